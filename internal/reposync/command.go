package reposync

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/ui"
)

const (
	commandUseConstant                 = "repo-sync"
	commandShortDescriptionConstant    = "Commit and push daily repository backups"
	commandLongDescriptionConstant     = "repo-sync stages the configured content paths, commits them with a dated backup message, and pushes to the remote branch."
	unexpectedArgumentsMessageConstant = "repo-sync does not accept positional arguments"
	flagRepositoryNameConstant         = "repository"
	flagRepositoryDescriptionConstant  = "Path to the repository to back up"
	flagRemoteNameConstant             = "remote"
	flagRemoteDescriptionConstant      = "Name of the remote receiving the backup"
	flagBranchNameConstant             = "branch"
	flagBranchDescriptionConstant      = "Branch pushed to the remote"
	flagEnvFileNameConstant            = "env-file"
	flagEnvFileDescriptionConstant     = "Environment file consulted for the GitHub token"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective command configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for repository sync.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     GitExecutor
}

// Build constructs the repo-sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().String(flagEnvFileNameConstant, "", flagEnvFileDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.resolveOptions(command)
	logger := builder.resolveLogger()

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(logger, executor)
	if serviceError != nil {
		return serviceError
	}

	return service.Sync(command.Context(), options)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) SyncOptions {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	applyFlagOverride(command, flagRepositoryNameConstant, &configuration.RepositoryPath)
	applyFlagOverride(command, flagRemoteNameConstant, &configuration.RemoteName)
	applyFlagOverride(command, flagBranchNameConstant, &configuration.BranchName)
	applyFlagOverride(command, flagEnvFileNameConstant, &configuration.EnvironmentFilePath)

	return SyncOptions{
		RepositoryPath:      configuration.RepositoryPath,
		RemoteName:          configuration.RemoteName,
		BranchName:          configuration.BranchName,
		EnvironmentFilePath: configuration.EnvironmentFilePath,
		CommitAuthorName:    configuration.CommitAuthorName,
		CommitAuthorEmail:   configuration.CommitAuthorEmail,
		StagingTargets:      configuration.StagingTargets,
	}
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	eventObservers := []execshell.CommandEventObserver{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObservers = append(eventObservers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, eventObservers...)
	if creationError != nil {
		return nil, creationError
	}

	return shellExecutor, nil
}
