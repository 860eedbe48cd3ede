package maintenance

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/awscli"
	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/monitor"
	"github.com/trendloop/trendops/internal/reposync"
	"github.com/trendloop/trendops/internal/snapshot"
	"github.com/trendloop/trendops/internal/ui"
)

const (
	commandUseConstant                 = "maintenance"
	commandShortDescriptionConstant    = "Run a declarative maintenance plan"
	commandLongDescriptionConstant     = "maintenance loads a YAML plan and runs its steps in order; failing steps are reported and the remaining steps still run."
	unexpectedArgumentsMessageConstant = "maintenance does not accept positional arguments"
	flagPlanNameConstant               = "plan"
	flagPlanDescriptionConstant        = "Path to the maintenance plan file"
	planFlagRequiredMessageConstant    = "maintenance requires --plan"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
var errPlanFlagRequired = errors.New(planFlagRequiredMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for maintenance plans.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Actions                      map[OperationType]StepAction
}

// Build constructs the maintenance command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagPlanNameConstant, "", flagPlanDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	planPathValue, _ := command.Flags().GetString(flagPlanNameConstant)
	planPath := strings.TrimSpace(planPathValue)
	if len(planPath) == 0 {
		return errPlanFlagRequired
	}

	plan, planError := LoadPlan(planPath)
	if planError != nil {
		return planError
	}

	logger := builder.resolveLogger()

	actions := builder.Actions
	if actions == nil {
		builtActions, actionsError := builder.defaultActions(logger)
		if actionsError != nil {
			return actionsError
		}
		actions = builtActions
	}

	runner, runnerError := NewRunner(logger, actions)
	if runnerError != nil {
		return runnerError
	}

	return runner.Run(command.Context(), plan)
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

func (builder *CommandBuilder) defaultActions(logger *zap.Logger) (map[OperationType]StepAction, error) {
	commandRunner := execshell.NewOSCommandRunner()
	eventObservers := []execshell.CommandEventObserver{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObservers = append(eventObservers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, eventObservers...)
	if executorError != nil {
		return nil, executorError
	}

	return map[OperationType]StepAction{
		OperationRepoSync:       repoSyncAction(logger, shellExecutor),
		OperationSnapshotRotate: snapshotRotateAction(logger, shellExecutor),
		OperationMonitor:        monitorAction(logger, shellExecutor),
	}, nil
}

func repoSyncAction(logger *zap.Logger, shellExecutor *execshell.ShellExecutor) StepAction {
	return func(executionContext context.Context, options map[string]any) error {
		configuration := reposync.DefaultCommandConfiguration()
		if decodeError := DecodeStepOptions(options, &configuration); decodeError != nil {
			return decodeError
		}

		service, serviceError := reposync.NewService(logger, shellExecutor)
		if serviceError != nil {
			return serviceError
		}

		return service.Sync(executionContext, reposync.SyncOptions{
			RepositoryPath:      configuration.RepositoryPath,
			RemoteName:          configuration.RemoteName,
			BranchName:          configuration.BranchName,
			EnvironmentFilePath: configuration.EnvironmentFilePath,
			CommitAuthorName:    configuration.CommitAuthorName,
			CommitAuthorEmail:   configuration.CommitAuthorEmail,
			StagingTargets:      configuration.StagingTargets,
		})
	}
}

func snapshotRotateAction(logger *zap.Logger, shellExecutor *execshell.ShellExecutor) StepAction {
	return func(executionContext context.Context, options map[string]any) error {
		configuration := snapshot.DefaultCommandConfiguration()
		if decodeError := DecodeStepOptions(options, &configuration); decodeError != nil {
			return decodeError
		}

		client, clientError := awscli.NewClient(shellExecutor, configuration.Region)
		if clientError != nil {
			return clientError
		}

		service, serviceError := snapshot.NewService(logger, client)
		if serviceError != nil {
			return serviceError
		}

		return service.Rotate(executionContext, snapshot.RotationOptions{
			VolumeID:     configuration.VolumeID,
			InstanceID:   configuration.InstanceID,
			SnapshotName: configuration.SnapshotName,
			RetainCount:  configuration.RetainCount,
			DryRun:       configuration.DryRun,
		})
	}
}

func monitorAction(logger *zap.Logger, shellExecutor *execshell.ShellExecutor) StepAction {
	return func(executionContext context.Context, options map[string]any) error {
		configuration := monitor.DefaultCommandConfiguration()
		if decodeError := DecodeStepOptions(options, &configuration); decodeError != nil {
			return decodeError
		}

		probes, probesError := monitor.NewHostProbes(shellExecutor)
		if probesError != nil {
			return probesError
		}

		notifier, notifierError := monitor.NewWebhookNotifier(shellExecutor)
		if notifierError != nil {
			return notifierError
		}

		service, serviceError := monitor.NewService(logger, probes, notifier)
		if serviceError != nil {
			return serviceError
		}

		return service.Check(executionContext, monitor.CheckOptions{
			StatusFilePath:  configuration.StatusFilePath,
			HeartbeatURL:    configuration.HeartbeatURL,
			WebhookURL:      configuration.WebhookURL,
			Processes:       configuration.Processes,
			CPUThreshold:    configuration.CPUThreshold,
			MemoryThreshold: configuration.MemoryThreshold,
			DiskThreshold:   configuration.DiskThreshold,
		})
	}
}
