package setup

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/awscli"
	"github.com/trendloop/trendops/internal/cron"
	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/ui"
)

const (
	commandUseConstant                 = "aws-setup"
	commandShortDescriptionConstant    = "Provision AWS alerting and backup schedules"
	commandLongDescriptionConstant     = "aws-setup verifies AWS credentials, provisions the alert topic and CloudWatch alarms for the instance, and installs the recurring backup jobs."
	unexpectedArgumentsMessageConstant = "aws-setup does not accept positional arguments"
	flagInstanceNameConstant           = "instance"
	flagInstanceDescriptionConstant    = "EC2 instance identifier to provision"
	flagRegionNameConstant             = "region"
	flagRegionDescriptionConstant      = "AWS region hosting the instance"
	flagEmailNameConstant              = "email"
	flagEmailDescriptionConstant       = "Email address subscribed to alert notifications"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective command configuration.
type ConfigurationProvider func() CommandConfiguration

// Dependencies carries injectable collaborators for testing.
type Dependencies struct {
	Client    SetupClient
	Scheduler JobScheduler
}

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for AWS setup.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Dependencies                 Dependencies
}

// Build constructs the aws-setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInstanceNameConstant, "", flagInstanceDescriptionConstant)
	command.Flags().String(flagRegionNameConstant, "", flagRegionDescriptionConstant)
	command.Flags().String(flagEmailNameConstant, "", flagEmailDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	client, scheduler, dependencyError := builder.resolveDependencies(logger, configuration.Region)
	if dependencyError != nil {
		return dependencyError
	}

	service, serviceError := NewService(logger, client, scheduler)
	if serviceError != nil {
		return serviceError
	}

	_, setupError := service.Setup(command.Context(), SetupOptions{
		InstanceID:       configuration.InstanceID,
		AlertEmail:       configuration.AlertEmail,
		TopicName:        configuration.TopicName,
		ExecutablePath:   configuration.ExecutablePath,
		SyncSchedule:     configuration.SyncSchedule,
		SnapshotSchedule: configuration.SnapshotSchedule,
	})

	return setupError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	applyFlagOverride(command, flagInstanceNameConstant, &configuration.InstanceID)
	applyFlagOverride(command, flagRegionNameConstant, &configuration.Region)
	applyFlagOverride(command, flagEmailNameConstant, &configuration.AlertEmail)

	return configuration
}

func applyFlagOverride(command *cobra.Command, flagName string, destination *string) {
	if !command.Flags().Changed(flagName) {
		return
	}
	flagValue, _ := command.Flags().GetString(flagName)
	trimmedValue := strings.TrimSpace(flagValue)
	if len(trimmedValue) > 0 {
		*destination = trimmedValue
	}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveDependencies(logger *zap.Logger, region string) (SetupClient, JobScheduler, error) {
	if builder.Dependencies.Client != nil && builder.Dependencies.Scheduler != nil {
		return builder.Dependencies.Client, builder.Dependencies.Scheduler, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	eventObservers := []execshell.CommandEventObserver{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObservers = append(eventObservers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, eventObservers...)
	if executorError != nil {
		return nil, nil, executorError
	}

	client := builder.Dependencies.Client
	if client == nil {
		createdClient, clientError := awscli.NewClient(shellExecutor, region)
		if clientError != nil {
			return nil, nil, clientError
		}
		client = createdClient
	}

	scheduler := builder.Dependencies.Scheduler
	if scheduler == nil {
		createdScheduler, schedulerError := cron.NewScheduler(logger, shellExecutor)
		if schedulerError != nil {
			return nil, nil, schedulerError
		}
		scheduler = createdScheduler
	}

	return client, scheduler, nil
}
