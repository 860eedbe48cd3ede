package awscli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trendloop/trendops/internal/execshell"
)

const (
	regionFlagConstant                      = "--region"
	outputFlagConstant                      = "--output"
	queryFlagConstant                       = "--query"
	textOutputValueConstant                 = "text"
	jsonOutputValueConstant                 = "json"
	ec2ServiceNameConstant                  = "ec2"
	snsServiceNameConstant                  = "sns"
	cloudWatchServiceNameConstant           = "cloudwatch"
	stsServiceNameConstant                  = "sts"
	createSnapshotSubcommandConstant        = "create-snapshot"
	describeSnapshotsSubcommandConstant     = "describe-snapshots"
	deleteSnapshotSubcommandConstant        = "delete-snapshot"
	describeInstancesSubcommandConstant     = "describe-instances"
	createTopicSubcommandConstant           = "create-topic"
	subscribeSubcommandConstant             = "subscribe"
	putMetricAlarmSubcommandConstant        = "put-metric-alarm"
	getCallerIdentitySubcommandConstant     = "get-caller-identity"
	volumeIDFlagConstant                    = "--volume-id"
	descriptionFlagConstant                 = "--description"
	tagSpecificationsFlagConstant           = "--tag-specifications"
	snapshotIDFlagConstant                  = "--snapshot-id"
	filtersFlagConstant                     = "--filters"
	instanceIDsFlagConstant                 = "--instance-ids"
	topicNameFlagConstant                   = "--name"
	topicArnFlagConstant                    = "--topic-arn"
	protocolFlagConstant                    = "--protocol"
	notificationEndpointFlagConstant        = "--notification-endpoint"
	emailProtocolValueConstant              = "email"
	alarmNameFlagConstant                   = "--alarm-name"
	alarmDescriptionFlagConstant            = "--alarm-description"
	metricNameFlagConstant                  = "--metric-name"
	namespaceFlagConstant                   = "--namespace"
	statisticFlagConstant                   = "--statistic"
	periodFlagConstant                      = "--period"
	thresholdFlagConstant                   = "--threshold"
	comparisonOperatorFlagConstant          = "--comparison-operator"
	evaluationPeriodsFlagConstant           = "--evaluation-periods"
	dimensionsFlagConstant                  = "--dimensions"
	alarmActionsFlagConstant                = "--alarm-actions"
	okActionsFlagConstant                   = "--ok-actions"
	unitFlagConstant                        = "--unit"
	treatMissingDataFlagConstant            = "--treat-missing-data"
	snapshotIDQueryConstant                 = "SnapshotId"
	rootVolumeQueryConstant                 = "Reservations[0].Instances[0].BlockDeviceMappings[0].Ebs.VolumeId"
	instanceDimensionTemplateConstant       = "Name=InstanceId,Value=%s"
	tagFilterTemplateConstant               = "Name=tag:%s,Values=%s"
	tagSpecificationTemplateConstant        = "ResourceType=snapshot,Tags=[%s]"
	tagEntryTemplateConstant                = "{Key=%s,Value=%s}"
	tagEntryJoinSeparatorConstant           = ","
	missingVolumeSentinelConstant           = "None"
	volumeIDFieldNameConstant               = "volume_id"
	snapshotIDFieldNameConstant             = "snapshot_id"
	instanceIDFieldNameConstant             = "instance_id"
	topicNameFieldNameConstant              = "topic_name"
	topicArnFieldNameConstant               = "topic_arn"
	emailAddressFieldNameConstant           = "email_address"
	alarmNameFieldNameConstant              = "alarm_name"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "aws cli executor not configured"
	rootVolumeNotFoundMessageConstant       = "root volume not found"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	createSnapshotOperationNameConstant     = OperationName("CreateSnapshot")
	describeSnapshotsOperationNameConstant  = OperationName("DescribeSnapshots")
	deleteSnapshotOperationNameConstant     = OperationName("DeleteSnapshot")
	resolveRootVolumeOperationNameConstant  = OperationName("ResolveRootVolume")
	createTopicOperationNameConstant        = OperationName("CreateTopic")
	subscribeOperationNameConstant          = OperationName("SubscribeEmail")
	putMetricAlarmOperationNameConstant     = OperationName("PutMetricAlarm")
	getCallerIdentityOperationNameConstant  = OperationName("GetCallerIdentity")
)

// OperationName describes a named AWS CLI workflow supported by the client.
type OperationName string

// Snapshot represents minimal EBS snapshot details returned by describe-snapshots.
type Snapshot struct {
	SnapshotID  string
	Description string
	StartTime   time.Time
}

// Tag captures a single resource tag applied at snapshot creation.
type Tag struct {
	Key   string
	Value string
}

// TagFilter selects resources carrying a specific tag value.
type TagFilter struct {
	Key   string
	Value string
}

// CallerIdentity reports the authenticated AWS account details.
type CallerIdentity struct {
	Account string
	ARN     string
}

// AlarmDefinition describes a CloudWatch metric alarm scoped to one instance.
type AlarmDefinition struct {
	Name               string
	Description        string
	MetricName         string
	Namespace          string
	Statistic          string
	PeriodSeconds      int
	Threshold          float64
	ComparisonOperator string
	EvaluationPeriods  int
	InstanceID         string
	AlarmActions       []string
	OKActions          []string
	Unit               string
	TreatMissingData   string
}

// AWSCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type AWSCommandExecutor interface {
	ExecuteAWSCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates AWS CLI invocations through execshell, scoped to one region.
type Client struct {
	executor AWSCommandExecutor
	region   string
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for AWS CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs an AWS CLI client scoped to the provided region.
func NewClient(executor AWSCommandExecutor, region string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, region: strings.TrimSpace(region)}, nil
}

// CreateSnapshot requests creation of an EBS snapshot and returns the assigned identifier.
func (client *Client) CreateSnapshot(executionContext context.Context, volumeID string, description string, tags []Tag) (string, error) {
	trimmedVolumeID := strings.TrimSpace(volumeID)
	if len(trimmedVolumeID) == 0 {
		return "", InvalidInputError{FieldName: volumeIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		ec2ServiceNameConstant,
		createSnapshotSubcommandConstant,
		volumeIDFlagConstant, trimmedVolumeID,
		descriptionFlagConstant, description,
		queryFlagConstant, snapshotIDQueryConstant,
		outputFlagConstant, textOutputValueConstant,
	)
	if len(tags) > 0 {
		commandArguments = append(commandArguments, tagSpecificationsFlagConstant, formatTagSpecification(tags))
	}

	executionResult, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return "", OperationError{Operation: createSnapshotOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// DescribeSnapshots lists snapshots matching the provided tag filter.
func (client *Client) DescribeSnapshots(executionContext context.Context, filter TagFilter) ([]Snapshot, error) {
	commandArguments := client.regionArguments(
		ec2ServiceNameConstant,
		describeSnapshotsSubcommandConstant,
		filtersFlagConstant, fmt.Sprintf(tagFilterTemplateConstant, filter.Key, filter.Value),
		outputFlagConstant, jsonOutputValueConstant,
	)

	executionResult, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return nil, OperationError{Operation: describeSnapshotsOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Snapshots []struct {
			SnapshotID  string    `json:"SnapshotId"`
			Description string    `json:"Description"`
			StartTime   time.Time `json:"StartTime"`
		} `json:"Snapshots"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: describeSnapshotsOperationNameConstant, Cause: decodingError}
	}

	snapshots := make([]Snapshot, 0, len(response.Snapshots))
	for _, snapshotEntry := range response.Snapshots {
		snapshots = append(snapshots, Snapshot{
			SnapshotID:  snapshotEntry.SnapshotID,
			Description: snapshotEntry.Description,
			StartTime:   snapshotEntry.StartTime,
		})
	}

	return snapshots, nil
}

// DeleteSnapshot requests deletion of the identified snapshot.
func (client *Client) DeleteSnapshot(executionContext context.Context, snapshotID string) error {
	trimmedSnapshotID := strings.TrimSpace(snapshotID)
	if len(trimmedSnapshotID) == 0 {
		return InvalidInputError{FieldName: snapshotIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		ec2ServiceNameConstant,
		deleteSnapshotSubcommandConstant,
		snapshotIDFlagConstant, trimmedSnapshotID,
	)

	_, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return OperationError{Operation: deleteSnapshotOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ResolveRootVolume returns the root EBS volume identifier attached to the instance.
func (client *Client) ResolveRootVolume(executionContext context.Context, instanceID string) (string, error) {
	trimmedInstanceID := strings.TrimSpace(instanceID)
	if len(trimmedInstanceID) == 0 {
		return "", InvalidInputError{FieldName: instanceIDFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		ec2ServiceNameConstant,
		describeInstancesSubcommandConstant,
		instanceIDsFlagConstant, trimmedInstanceID,
		queryFlagConstant, rootVolumeQueryConstant,
		outputFlagConstant, textOutputValueConstant,
	)

	executionResult, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return "", OperationError{Operation: resolveRootVolumeOperationNameConstant, Cause: executionError}
	}

	resolvedVolumeID := strings.TrimSpace(executionResult.StandardOutput)
	if len(resolvedVolumeID) == 0 || resolvedVolumeID == missingVolumeSentinelConstant {
		return "", OperationError{Operation: resolveRootVolumeOperationNameConstant, Cause: errors.New(rootVolumeNotFoundMessageConstant)}
	}

	return resolvedVolumeID, nil
}

// CreateTopic creates an SNS topic and returns its ARN.
func (client *Client) CreateTopic(executionContext context.Context, topicName string) (string, error) {
	trimmedTopicName := strings.TrimSpace(topicName)
	if len(trimmedTopicName) == 0 {
		return "", InvalidInputError{FieldName: topicNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		snsServiceNameConstant,
		createTopicSubcommandConstant,
		topicNameFlagConstant, trimmedTopicName,
		outputFlagConstant, jsonOutputValueConstant,
	)

	executionResult, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return "", OperationError{Operation: createTopicOperationNameConstant, Cause: executionError}
	}

	var response struct {
		TopicArn string `json:"TopicArn"`
	}
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return "", ResponseDecodingError{Operation: createTopicOperationNameConstant, Cause: decodingError}
	}

	return response.TopicArn, nil
}

// SubscribeEmail subscribes an email endpoint to the identified SNS topic.
func (client *Client) SubscribeEmail(executionContext context.Context, topicArn string, emailAddress string) error {
	trimmedTopicArn := strings.TrimSpace(topicArn)
	if len(trimmedTopicArn) == 0 {
		return InvalidInputError{FieldName: topicArnFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedEmailAddress := strings.TrimSpace(emailAddress)
	if len(trimmedEmailAddress) == 0 {
		return InvalidInputError{FieldName: emailAddressFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		snsServiceNameConstant,
		subscribeSubcommandConstant,
		topicArnFlagConstant, trimmedTopicArn,
		protocolFlagConstant, emailProtocolValueConstant,
		notificationEndpointFlagConstant, trimmedEmailAddress,
	)

	_, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return OperationError{Operation: subscribeOperationNameConstant, Cause: executionError}
	}

	return nil
}

// PutMetricAlarm creates or updates a CloudWatch metric alarm.
func (client *Client) PutMetricAlarm(executionContext context.Context, definition AlarmDefinition) error {
	trimmedAlarmName := strings.TrimSpace(definition.Name)
	if len(trimmedAlarmName) == 0 {
		return InvalidInputError{FieldName: alarmNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := client.regionArguments(
		cloudWatchServiceNameConstant,
		putMetricAlarmSubcommandConstant,
		alarmNameFlagConstant, trimmedAlarmName,
		alarmDescriptionFlagConstant, definition.Description,
		metricNameFlagConstant, definition.MetricName,
		namespaceFlagConstant, definition.Namespace,
		statisticFlagConstant, definition.Statistic,
		periodFlagConstant, strconv.Itoa(definition.PeriodSeconds),
		thresholdFlagConstant, strconv.FormatFloat(definition.Threshold, 'f', -1, 64),
		comparisonOperatorFlagConstant, definition.ComparisonOperator,
		evaluationPeriodsFlagConstant, strconv.Itoa(definition.EvaluationPeriods),
		dimensionsFlagConstant, fmt.Sprintf(instanceDimensionTemplateConstant, definition.InstanceID),
	)
	if len(definition.AlarmActions) > 0 {
		commandArguments = append(commandArguments, alarmActionsFlagConstant)
		commandArguments = append(commandArguments, definition.AlarmActions...)
	}
	if len(definition.OKActions) > 0 {
		commandArguments = append(commandArguments, okActionsFlagConstant)
		commandArguments = append(commandArguments, definition.OKActions...)
	}
	if len(definition.Unit) > 0 {
		commandArguments = append(commandArguments, unitFlagConstant, definition.Unit)
	}
	if len(definition.TreatMissingData) > 0 {
		commandArguments = append(commandArguments, treatMissingDataFlagConstant, definition.TreatMissingData)
	}

	_, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return OperationError{Operation: putMetricAlarmOperationNameConstant, Cause: executionError}
	}

	return nil
}

// GetCallerIdentity verifies credentials and returns the authenticated account details.
func (client *Client) GetCallerIdentity(executionContext context.Context) (CallerIdentity, error) {
	commandArguments := client.regionArguments(
		stsServiceNameConstant,
		getCallerIdentitySubcommandConstant,
		outputFlagConstant, jsonOutputValueConstant,
	)

	executionResult, executionError := client.executor.ExecuteAWSCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return CallerIdentity{}, OperationError{Operation: getCallerIdentityOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Account string `json:"Account"`
		Arn     string `json:"Arn"`
	}
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return CallerIdentity{}, ResponseDecodingError{Operation: getCallerIdentityOperationNameConstant, Cause: decodingError}
	}

	return CallerIdentity{Account: response.Account, ARN: response.Arn}, nil
}

func (client *Client) regionArguments(arguments ...string) []string {
	if len(client.region) == 0 {
		return append([]string{}, arguments...)
	}
	return append([]string{regionFlagConstant, client.region}, arguments...)
}

func formatTagSpecification(tags []Tag) string {
	tagEntries := make([]string, 0, len(tags))
	for _, tagValue := range tags {
		tagEntries = append(tagEntries, fmt.Sprintf(tagEntryTemplateConstant, tagValue.Key, tagValue.Value))
	}
	return fmt.Sprintf(tagSpecificationTemplateConstant, strings.Join(tagEntries, tagEntryJoinSeparatorConstant))
}
