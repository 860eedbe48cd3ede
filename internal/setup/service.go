package setup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/awscli"
)

const (
	cpuAlarmNameTemplateConstant         = "%s-high-cpu"
	statusAlarmNameTemplateConstant      = "%s-status-check-failed"
	cpuAlarmDescriptionConstant          = "CPU utilization above threshold"
	statusAlarmDescriptionConstant       = "Instance status check failing"
	cpuMetricNameConstant                = "CPUUtilization"
	statusMetricNameConstant             = "StatusCheckFailed"
	ec2NamespaceConstant                 = "AWS/EC2"
	averageStatisticConstant             = "Average"
	maximumStatisticConstant             = "Maximum"
	cpuAlarmPeriodSecondsConstant        = 300
	statusAlarmPeriodSecondsConstant     = 300
	cpuAlarmThresholdConstant            = 80
	statusAlarmThresholdConstant         = 1
	greaterThanOperatorConstant          = "GreaterThanThreshold"
	greaterThanOrEqualOperatorConstant   = "GreaterThanOrEqualToThreshold"
	cpuAlarmEvaluationPeriodsConstant    = 2
	statusAlarmEvaluationPeriodsConstant = 2
	percentUnitConstant                  = "Percent"
	missingDataMissingConstant           = "missing"
	missingDataBreachingConstant         = "breaching"
	cronEntryTemplateConstant            = "%s %s %s"
	repoSyncSubcommandNameConstant       = "repo-sync"
	snapshotSubcommandNameConstant       = "snapshot-rotate"
	loggerRequiredMessageConstant        = "logger not configured"
	clientRequiredMessageConstant        = "setup client not configured"
	schedulerRequiredMessageConstant     = "cron scheduler not configured"
	instanceRequiredMessageConstant      = "instance identifier required"
	credentialsErrorTemplateConstant     = "credential verification failed: %w"
	topicWarningMessageConstant          = "Unable to provision alert topic"
	subscriptionWarningMessageConstant   = "Unable to subscribe alert email"
	volumeWarningMessageConstant         = "Unable to resolve root volume"
	alarmWarningMessageConstant          = "Unable to provision alarm"
	scheduleWarningMessageConstant       = "Unable to install scheduled jobs"
	credentialsVerifiedLogConstant       = "AWS credentials verified"
	topicProvisionedLogConstant          = "Alert topic provisioned"
	rootVolumeResolvedLogConstant        = "Root volume resolved"
	alarmProvisionedLogConstant          = "Alarm provisioned"
	setupCompleteLogConstant             = "AWS setup complete"
	accountFieldNameConstant             = "account"
	identityFieldNameConstant            = "identity_arn"
	topicFieldNameConstant               = "topic_arn"
	instanceFieldNameConstant            = "instance_id"
	volumeFieldNameConstant              = "volume_id"
	alarmFieldNameConstant               = "alarm_name"
)

// ErrLoggerNotConfigured indicates the service requires a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrClientNotConfigured indicates the service requires a setup client.
var ErrClientNotConfigured = errors.New(clientRequiredMessageConstant)

// ErrSchedulerNotConfigured indicates the service requires a cron scheduler.
var ErrSchedulerNotConfigured = errors.New(schedulerRequiredMessageConstant)

// ErrInstanceNotConfigured indicates no instance identifier was supplied.
var ErrInstanceNotConfigured = errors.New(instanceRequiredMessageConstant)

// SetupClient is the subset of awscli.Client used by provisioning.
type SetupClient interface {
	GetCallerIdentity(executionContext context.Context) (awscli.CallerIdentity, error)
	CreateTopic(executionContext context.Context, topicName string) (string, error)
	SubscribeEmail(executionContext context.Context, topicArn string, emailAddress string) error
	ResolveRootVolume(executionContext context.Context, instanceID string) (string, error)
	PutMetricAlarm(executionContext context.Context, definition awscli.AlarmDefinition) error
}

// JobScheduler installs recurring job entries.
type JobScheduler interface {
	EnsureEntries(executionContext context.Context, requestedEntries []string) error
}

// SetupOptions describes one provisioning run.
type SetupOptions struct {
	InstanceID       string
	AlertEmail       string
	TopicName        string
	ExecutablePath   string
	SyncSchedule     string
	SnapshotSchedule string
}

// SetupResult reports the provisioned resource identifiers.
type SetupResult struct {
	Account      string
	TopicArn     string
	RootVolumeID string
}

// Service provisions monitoring and scheduling resources for one instance.
type Service struct {
	logger    *zap.Logger
	client    SetupClient
	scheduler JobScheduler
}

// NewService constructs a provisioning service.
func NewService(logger *zap.Logger, client SetupClient, scheduler JobScheduler) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if scheduler == nil {
		return nil, ErrSchedulerNotConfigured
	}

	return &Service{logger: logger, client: client, scheduler: scheduler}, nil
}

// Setup verifies credentials and provisions the alert topic, alarms, and
// scheduled jobs for the configured instance.
//
// Credential verification failure aborts the run; every later step reports
// its own failure and the remaining steps still execute.
func (service *Service) Setup(executionContext context.Context, options SetupOptions) (SetupResult, error) {
	if len(options.InstanceID) == 0 {
		return SetupResult{}, ErrInstanceNotConfigured
	}

	callerIdentity, identityError := service.client.GetCallerIdentity(executionContext)
	if identityError != nil {
		return SetupResult{}, fmt.Errorf(credentialsErrorTemplateConstant, identityError)
	}
	service.logger.Info(credentialsVerifiedLogConstant,
		zap.String(accountFieldNameConstant, callerIdentity.Account),
		zap.String(identityFieldNameConstant, callerIdentity.ARN),
	)

	topicArn := service.provisionAlertTopic(executionContext, options)
	rootVolumeID := service.resolveRootVolume(executionContext, options)
	service.provisionAlarms(executionContext, options, topicArn)
	service.installSchedules(executionContext, options)

	service.logger.Info(setupCompleteLogConstant,
		zap.String(instanceFieldNameConstant, options.InstanceID),
		zap.String(topicFieldNameConstant, topicArn),
	)

	return SetupResult{Account: callerIdentity.Account, TopicArn: topicArn, RootVolumeID: rootVolumeID}, nil
}

func (service *Service) provisionAlertTopic(executionContext context.Context, options SetupOptions) string {
	if len(options.AlertEmail) == 0 {
		return ""
	}

	topicArn, topicError := service.client.CreateTopic(executionContext, options.TopicName)
	if topicError != nil {
		service.logger.Warn(topicWarningMessageConstant, zap.Error(topicError))
		return ""
	}

	if subscriptionError := service.client.SubscribeEmail(executionContext, topicArn, options.AlertEmail); subscriptionError != nil {
		service.logger.Warn(subscriptionWarningMessageConstant, zap.String(topicFieldNameConstant, topicArn), zap.Error(subscriptionError))
	}

	service.logger.Info(topicProvisionedLogConstant, zap.String(topicFieldNameConstant, topicArn))
	return topicArn
}

func (service *Service) resolveRootVolume(executionContext context.Context, options SetupOptions) string {
	rootVolumeID, volumeError := service.client.ResolveRootVolume(executionContext, options.InstanceID)
	if volumeError != nil {
		service.logger.Warn(volumeWarningMessageConstant,
			zap.String(instanceFieldNameConstant, options.InstanceID),
			zap.Error(volumeError),
		)
		return ""
	}

	service.logger.Info(rootVolumeResolvedLogConstant,
		zap.String(instanceFieldNameConstant, options.InstanceID),
		zap.String(volumeFieldNameConstant, rootVolumeID),
	)
	return rootVolumeID
}

func (service *Service) provisionAlarms(executionContext context.Context, options SetupOptions, topicArn string) {
	alarmActions := []string{}
	if len(topicArn) > 0 {
		alarmActions = append(alarmActions, topicArn)
	}

	alarmDefinitions := []awscli.AlarmDefinition{
		{
			Name:               fmt.Sprintf(cpuAlarmNameTemplateConstant, options.InstanceID),
			Description:        cpuAlarmDescriptionConstant,
			MetricName:         cpuMetricNameConstant,
			Namespace:          ec2NamespaceConstant,
			Statistic:          averageStatisticConstant,
			PeriodSeconds:      cpuAlarmPeriodSecondsConstant,
			Threshold:          cpuAlarmThresholdConstant,
			ComparisonOperator: greaterThanOperatorConstant,
			EvaluationPeriods:  cpuAlarmEvaluationPeriodsConstant,
			InstanceID:         options.InstanceID,
			AlarmActions:       alarmActions,
			OKActions:          alarmActions,
			Unit:               percentUnitConstant,
			TreatMissingData:   missingDataMissingConstant,
		},
		{
			Name:               fmt.Sprintf(statusAlarmNameTemplateConstant, options.InstanceID),
			Description:        statusAlarmDescriptionConstant,
			MetricName:         statusMetricNameConstant,
			Namespace:          ec2NamespaceConstant,
			Statistic:          maximumStatisticConstant,
			PeriodSeconds:      statusAlarmPeriodSecondsConstant,
			Threshold:          statusAlarmThresholdConstant,
			ComparisonOperator: greaterThanOrEqualOperatorConstant,
			EvaluationPeriods:  statusAlarmEvaluationPeriodsConstant,
			InstanceID:         options.InstanceID,
			AlarmActions:       alarmActions,
			TreatMissingData:   missingDataBreachingConstant,
		},
	}

	for _, alarmDefinition := range alarmDefinitions {
		if alarmError := service.client.PutMetricAlarm(executionContext, alarmDefinition); alarmError != nil {
			service.logger.Warn(alarmWarningMessageConstant, zap.String(alarmFieldNameConstant, alarmDefinition.Name), zap.Error(alarmError))
			continue
		}
		service.logger.Info(alarmProvisionedLogConstant, zap.String(alarmFieldNameConstant, alarmDefinition.Name))
	}
}

func (service *Service) installSchedules(executionContext context.Context, options SetupOptions) {
	scheduledEntries := []string{
		fmt.Sprintf(cronEntryTemplateConstant, options.SyncSchedule, options.ExecutablePath, repoSyncSubcommandNameConstant),
		fmt.Sprintf(cronEntryTemplateConstant, options.SnapshotSchedule, options.ExecutablePath, snapshotSubcommandNameConstant),
	}

	if scheduleError := service.scheduler.EnsureEntries(executionContext, scheduledEntries); scheduleError != nil {
		service.logger.Warn(scheduleWarningMessageConstant, zap.Error(scheduleError))
	}
}
