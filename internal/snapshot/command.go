package snapshot

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/awscli"
	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/ui"
)

const (
	commandUseConstant                 = "snapshot-rotate"
	commandShortDescriptionConstant    = "Create an EBS snapshot and rotate expired ones"
	commandLongDescriptionConstant     = "snapshot-rotate creates one snapshot of the configured volume and deletes the oldest automatically-managed snapshots beyond the retention count."
	unexpectedArgumentsMessageConstant = "snapshot-rotate does not accept positional arguments"
	flagVolumeNameConstant             = "volume"
	flagVolumeDescriptionConstant      = "EBS volume identifier to snapshot"
	flagInstanceNameConstant           = "instance"
	flagInstanceDescriptionConstant    = "EC2 instance whose root volume is snapshotted when no volume is given"
	flagRegionNameConstant             = "region"
	flagRegionDescriptionConstant      = "AWS region hosting the volume"
	flagRetainNameConstant             = "retain"
	flagRetainDescriptionConstant      = "Number of newest managed snapshots to keep"
	flagSnapshotNameConstant           = "name"
	flagSnapshotNameDescription        = "Name tag applied to created snapshots"
	flagDryRunNameConstant             = "dry-run"
	flagDryRunDescriptionConstant      = "Report intended snapshot changes without performing them"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective command configuration.
type ConfigurationProvider func() CommandConfiguration

// ClientFactory builds a snapshot client scoped to one region.
type ClientFactory func(logger *zap.Logger, region string) (SnapshotClient, error)

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for snapshot rotation.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ClientFactory                ClientFactory
}

// Build constructs the snapshot-rotate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagVolumeNameConstant, "", flagVolumeDescriptionConstant)
	command.Flags().String(flagInstanceNameConstant, "", flagInstanceDescriptionConstant)
	command.Flags().String(flagRegionNameConstant, "", flagRegionDescriptionConstant)
	command.Flags().Int(flagRetainNameConstant, 0, flagRetainDescriptionConstant)
	command.Flags().String(flagSnapshotNameConstant, "", flagSnapshotNameDescription)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	client, clientError := builder.resolveClient(logger, configuration.Region)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(logger, client)
	if serviceError != nil {
		return serviceError
	}

	return service.Rotate(command.Context(), RotationOptions{
		VolumeID:     configuration.VolumeID,
		InstanceID:   configuration.InstanceID,
		SnapshotName: configuration.SnapshotName,
		RetainCount:  configuration.RetainCount,
		DryRun:       configuration.DryRun,
	})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	applyStringFlagOverride(command, flagVolumeNameConstant, &configuration.VolumeID)
	applyStringFlagOverride(command, flagInstanceNameConstant, &configuration.InstanceID)
	applyStringFlagOverride(command, flagRegionNameConstant, &configuration.Region)
	applyStringFlagOverride(command, flagSnapshotNameConstant, &configuration.SnapshotName)

	if command.Flags().Changed(flagRetainNameConstant) {
		retainValue, _ := command.Flags().GetInt(flagRetainNameConstant)
		if retainValue > 0 {
			configuration.RetainCount = retainValue
		}
	}

	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRunValue, _ := command.Flags().GetBool(flagDryRunNameConstant)
		configuration.DryRun = dryRunValue
	}

	return configuration
}

func applyStringFlagOverride(command *cobra.Command, flagName string, destination *string) {
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

func (builder *CommandBuilder) resolveClient(logger *zap.Logger, region string) (SnapshotClient, error) {
	if builder.ClientFactory != nil {
		return builder.ClientFactory(logger, region)
	}

	commandRunner := execshell.NewOSCommandRunner()
	eventObservers := []execshell.CommandEventObserver{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObservers = append(eventObservers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, eventObservers...)
	if executorError != nil {
		return nil, executorError
	}

	return awscli.NewClient(shellExecutor, region)
}
