package monitor

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/ui"
)

const (
	commandUseConstant                 = "monitor"
	commandShortDescriptionConstant    = "Run a host health check"
	commandLongDescriptionConstant     = "monitor samples CPU, memory, disk, and process health, writes a JSON status report, and notifies the configured heartbeat and webhook endpoints."
	unexpectedArgumentsMessageConstant = "monitor does not accept positional arguments"
	flagStatusFileNameConstant         = "status-file"
	flagStatusFileDescriptionConstant  = "Path of the JSON status report"
	flagHeartbeatNameConstant          = "heartbeat-url"
	flagHeartbeatDescriptionConstant   = "Heartbeat endpoint pinged after every run"
	flagWebhookNameConstant            = "webhook-url"
	flagWebhookDescriptionConstant     = "Webhook endpoint receiving alert payloads"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective command configuration.
type ConfigurationProvider func() CommandConfiguration

// Dependencies carries injectable collaborators for testing.
type Dependencies struct {
	Probes   MetricProbes
	Notifier Notifier
}

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for host monitoring.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Dependencies                 Dependencies
}

// Build constructs the monitor command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagStatusFileNameConstant, "", flagStatusFileDescriptionConstant)
	command.Flags().String(flagHeartbeatNameConstant, "", flagHeartbeatDescriptionConstant)
	command.Flags().String(flagWebhookNameConstant, "", flagWebhookDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	probes, notifier, dependencyError := builder.resolveDependencies(logger)
	if dependencyError != nil {
		return dependencyError
	}

	service, serviceError := NewService(logger, probes, notifier)
	if serviceError != nil {
		return serviceError
	}

	return service.Check(command.Context(), CheckOptions{
		StatusFilePath:  configuration.StatusFilePath,
		HeartbeatURL:    configuration.HeartbeatURL,
		WebhookURL:      configuration.WebhookURL,
		Processes:       configuration.Processes,
		CPUThreshold:    configuration.CPUThreshold,
		MemoryThreshold: configuration.MemoryThreshold,
		DiskThreshold:   configuration.DiskThreshold,
	})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	applyFlagOverride(command, flagStatusFileNameConstant, &configuration.StatusFilePath)
	applyFlagOverride(command, flagHeartbeatNameConstant, &configuration.HeartbeatURL)
	applyFlagOverride(command, flagWebhookNameConstant, &configuration.WebhookURL)

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

func (builder *CommandBuilder) resolveDependencies(logger *zap.Logger) (MetricProbes, Notifier, error) {
	if builder.Dependencies.Probes != nil && builder.Dependencies.Notifier != nil {
		return builder.Dependencies.Probes, builder.Dependencies.Notifier, nil
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

	probes := builder.Dependencies.Probes
	if probes == nil {
		createdProbes, probesError := NewHostProbes(shellExecutor)
		if probesError != nil {
			return nil, nil, probesError
		}
		probes = createdProbes
	}

	notifier := builder.Dependencies.Notifier
	if notifier == nil {
		createdNotifier, notifierError := NewWebhookNotifier(shellExecutor)
		if notifierError != nil {
			return nil, nil, notifierError
		}
		notifier = createdNotifier
	}

	return probes, notifier, nil
}
