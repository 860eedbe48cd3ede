package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	commandLogFieldNameConstant        = "command"
	argumentsLogFieldNameConstant      = "arguments"
	workingDirectoryLogFieldConstant   = "working_directory"
	exitCodeLogFieldNameConstant       = "exit_code"
	standardErrorLogFieldNameConstant  = "standard_error"
	commandStartedLogMessageConstant   = "external command started"
	commandCompletedLogMessageConstant = "external command completed"
	commandFailedLogMessageConstant    = "external command failed"
)

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor coordinates external command execution with logging and event notifications.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, eventObservers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var selectedObserver CommandEventObserver = noopCommandEventObserver{}
	for _, candidateObserver := range eventObservers {
		if candidateObserver != nil {
			selectedObserver = candidateObserver
			break
		}
	}

	return &ShellExecutor{logger: logger, commandRunner: commandRunner, eventObserver: selectedObserver}, nil
}

// ExecuteGit runs the git binary with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteAWSCLI runs the AWS command-line client with the supplied details.
func (executor *ShellExecutor) ExecuteAWSCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandAWS, Details: details})
}

// ExecuteCurl runs the curl binary with the supplied details.
func (executor *ShellExecutor) ExecuteCurl(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandCurl, Details: details})
}

// ExecuteCrontab runs the crontab binary with the supplied details.
func (executor *ShellExecutor) ExecuteCrontab(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandCrontab, Details: details})
}

// ExecuteProbe runs an arbitrary host probe binary with the supplied details.
func (executor *ShellExecutor) ExecuteProbe(executionContext context.Context, binaryName string, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandName(binaryName), Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(commandLogFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsLogFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryLogFieldConstant, command.Details.WorkingDirectory),
	)
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(
			commandFailedLogMessageConstant,
			zap.String(commandLogFieldNameConstant, string(command.Name)),
			zap.Error(runError),
		)
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(commandLogFieldNameConstant, string(command.Name)),
			zap.Int(exitCodeLogFieldNameConstant, executionResult.ExitCode),
			zap.String(standardErrorLogFieldNameConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(commandLogFieldNameConstant, string(command.Name)),
		zap.Int(exitCodeLogFieldNameConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}
