package awscli_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trendloop/trendops/internal/awscli"
	"github.com/trendloop/trendops/internal/execshell"
)

const (
	testRegionConstant                = "us-east-1"
	testVolumeIDConstant              = "vol-0abc1234def567890"
	testSnapshotIDConstant            = "snap-0123456789abcdef0"
	testInstanceIDConstant            = "i-0fedcba9876543210"
	testTopicNameConstant             = "trendloop-alerts"
	testTopicArnConstant              = "arn:aws:sns:us-east-1:123456789012:trendloop-alerts"
	testEmailAddressConstant          = "ops@trendloop.example"
	testSnapshotDescriptionConstant   = "TrendLoop daily backup"
	missingExecutorCaseNameConstant   = "missing_executor"
	createSnapshotCaseNameConstant    = "create_snapshot"
	describeSnapshotsCaseNameConstant = "describe_snapshots"
	deleteSnapshotCaseNameConstant    = "delete_snapshot"
	resolveRootVolumeCaseNameConstant = "resolve_root_volume"
	createTopicCaseNameConstant       = "create_topic"
	subscribeEmailCaseNameConstant    = "subscribe_email"
	putMetricAlarmCaseNameConstant    = "put_metric_alarm"
	getCallerIdentityCaseNameConstant = "get_caller_identity"
	describeSnapshotsResponseConstant = `{"Snapshots":[{"SnapshotId":"snap-a","Description":"first","StartTime":"2026-08-01T03:00:00.123Z"},{"SnapshotId":"snap-b","Description":"second","StartTime":"2026-08-02T03:00:00+00:00"}]}`
	createTopicResponseConstant       = `{"TopicArn":"arn:aws:sns:us-east-1:123456789012:trendloop-alerts"}`
	callerIdentityResponseConstant    = `{"Account":"123456789012","Arn":"arn:aws:iam::123456789012:user/ops"}`
	simulatedExecutionFailureConstant = "aws cli unavailable"
)

type recordingAWSExecutor struct {
	recordedDetails []execshell.CommandDetails
	standardOutput  string
	executionError  error
}

func (executor *recordingAWSExecutor) ExecuteAWSCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run(missingExecutorCaseNameConstant, func(testInstance *testing.T) {
		clientInstance, creationError := awscli.NewClient(nil, testRegionConstant)
		require.Nil(testInstance, clientInstance)
		require.ErrorIs(testInstance, creationError, awscli.ErrExecutorNotConfigured)
	})
}

func TestCreateSnapshot(testInstance *testing.T) {
	testInstance.Run(createSnapshotCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: testSnapshotIDConstant + "\n"}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		snapshotID, operationError := clientInstance.CreateSnapshot(
			context.Background(),
			testVolumeIDConstant,
			testSnapshotDescriptionConstant,
			[]awscli.Tag{{Key: "Name", Value: "trendloop-backup"}, {Key: "AutoCleanup", Value: "true"}},
		)
		require.NoError(testInstance, operationError)
		require.Equal(testInstance, testSnapshotIDConstant, snapshotID)

		require.Len(testInstance, executor.recordedDetails, 1)
		commandArguments := executor.recordedDetails[0].Arguments
		require.Equal(testInstance, []string{"--region", testRegionConstant, "ec2", "create-snapshot"}, commandArguments[:4])
		require.Contains(testInstance, commandArguments, testVolumeIDConstant)
		require.Contains(testInstance, commandArguments, "ResourceType=snapshot,Tags=[{Key=Name,Value=trendloop-backup},{Key=AutoCleanup,Value=true}]")
	})

	testInstance.Run("missing_volume_identifier", func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		_, operationError := clientInstance.CreateSnapshot(context.Background(), "  ", testSnapshotDescriptionConstant, nil)
		require.Error(testInstance, operationError)
		require.Empty(testInstance, executor.recordedDetails)
	})
}

func TestDescribeSnapshots(testInstance *testing.T) {
	testInstance.Run(describeSnapshotsCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: describeSnapshotsResponseConstant}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		snapshots, operationError := clientInstance.DescribeSnapshots(context.Background(), awscli.TagFilter{Key: "AutoCleanup", Value: "true"})
		require.NoError(testInstance, operationError)
		require.Len(testInstance, snapshots, 2)
		require.Equal(testInstance, "snap-a", snapshots[0].SnapshotID)
		require.Equal(testInstance, "first", snapshots[0].Description)
		require.Equal(testInstance, time.Date(2026, time.August, 1, 3, 0, 0, 123000000, time.UTC), snapshots[0].StartTime.UTC())
		require.Equal(testInstance, "snap-b", snapshots[1].SnapshotID)

		require.Len(testInstance, executor.recordedDetails, 1)
		require.Contains(testInstance, executor.recordedDetails[0].Arguments, "Name=tag:AutoCleanup,Values=true")
	})

	testInstance.Run("invalid_response_payload", func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: "not json"}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		_, operationError := clientInstance.DescribeSnapshots(context.Background(), awscli.TagFilter{Key: "AutoCleanup", Value: "true"})
		var decodingError awscli.ResponseDecodingError
		require.ErrorAs(testInstance, operationError, &decodingError)
	})
}

func TestDeleteSnapshot(testInstance *testing.T) {
	testInstance.Run(deleteSnapshotCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		operationError := clientInstance.DeleteSnapshot(context.Background(), testSnapshotIDConstant)
		require.NoError(testInstance, operationError)

		require.Len(testInstance, executor.recordedDetails, 1)
		require.Equal(testInstance,
			[]string{"--region", testRegionConstant, "ec2", "delete-snapshot", "--snapshot-id", testSnapshotIDConstant},
			executor.recordedDetails[0].Arguments,
		)
	})

	testInstance.Run("execution_failure", func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{executionError: errors.New(simulatedExecutionFailureConstant)}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		operationError := clientInstance.DeleteSnapshot(context.Background(), testSnapshotIDConstant)
		var typedOperationError awscli.OperationError
		require.ErrorAs(testInstance, operationError, &typedOperationError)
		require.Contains(testInstance, operationError.Error(), simulatedExecutionFailureConstant)
	})
}

func TestResolveRootVolume(testInstance *testing.T) {
	testInstance.Run(resolveRootVolumeCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: testVolumeIDConstant + "\n"}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		volumeID, operationError := clientInstance.ResolveRootVolume(context.Background(), testInstanceIDConstant)
		require.NoError(testInstance, operationError)
		require.Equal(testInstance, testVolumeIDConstant, volumeID)

		require.Len(testInstance, executor.recordedDetails, 1)
		require.Contains(testInstance, executor.recordedDetails[0].Arguments, testInstanceIDConstant)
	})

	testInstance.Run("missing_root_volume", func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: "None\n"}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		_, operationError := clientInstance.ResolveRootVolume(context.Background(), testInstanceIDConstant)
		require.Error(testInstance, operationError)
	})
}

func TestCreateTopicAndSubscribe(testInstance *testing.T) {
	testInstance.Run(createTopicCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: createTopicResponseConstant}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		topicArn, operationError := clientInstance.CreateTopic(context.Background(), testTopicNameConstant)
		require.NoError(testInstance, operationError)
		require.Equal(testInstance, testTopicArnConstant, topicArn)
	})

	testInstance.Run(subscribeEmailCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		operationError := clientInstance.SubscribeEmail(context.Background(), testTopicArnConstant, testEmailAddressConstant)
		require.NoError(testInstance, operationError)

		require.Len(testInstance, executor.recordedDetails, 1)
		commandArguments := executor.recordedDetails[0].Arguments
		require.Contains(testInstance, commandArguments, "--protocol")
		require.Contains(testInstance, commandArguments, "email")
		require.Contains(testInstance, commandArguments, testEmailAddressConstant)
	})
}

func TestPutMetricAlarm(testInstance *testing.T) {
	testInstance.Run(putMetricAlarmCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		operationError := clientInstance.PutMetricAlarm(context.Background(), awscli.AlarmDefinition{
			Name:               "trendloop-high-cpu",
			Description:        "CPU above threshold",
			MetricName:         "CPUUtilization",
			Namespace:          "AWS/EC2",
			Statistic:          "Average",
			PeriodSeconds:      300,
			Threshold:          80,
			ComparisonOperator: "GreaterThanThreshold",
			EvaluationPeriods:  2,
			InstanceID:         testInstanceIDConstant,
			AlarmActions:       []string{testTopicArnConstant},
			Unit:               "Percent",
		})
		require.NoError(testInstance, operationError)

		require.Len(testInstance, executor.recordedDetails, 1)
		joinedArguments := strings.Join(executor.recordedDetails[0].Arguments, " ")
		require.Contains(testInstance, joinedArguments, "cloudwatch put-metric-alarm")
		require.Contains(testInstance, joinedArguments, "--threshold 80")
		require.Contains(testInstance, joinedArguments, "Name=InstanceId,Value="+testInstanceIDConstant)
		require.Contains(testInstance, joinedArguments, "--alarm-actions "+testTopicArnConstant)
	})

	testInstance.Run("missing_alarm_name", func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		operationError := clientInstance.PutMetricAlarm(context.Background(), awscli.AlarmDefinition{})
		require.Error(testInstance, operationError)
		require.Empty(testInstance, executor.recordedDetails)
	})
}

func TestGetCallerIdentity(testInstance *testing.T) {
	testInstance.Run(getCallerIdentityCaseNameConstant, func(testInstance *testing.T) {
		executor := &recordingAWSExecutor{standardOutput: callerIdentityResponseConstant}
		clientInstance, creationError := awscli.NewClient(executor, testRegionConstant)
		require.NoError(testInstance, creationError)

		identity, operationError := clientInstance.GetCallerIdentity(context.Background())
		require.NoError(testInstance, operationError)
		require.Equal(testInstance, "123456789012", identity.Account)
		require.Equal(testInstance, "arn:aws:iam::123456789012:user/ops", identity.ARN)
	})
}
