package execshell

// CommandEventObserver receives lifecycle notifications for the host tools
// trendops drives (git, aws, crontab, curl).
type CommandEventObserver interface {
	// CommandStarted fires before the tool process is launched.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires after the tool exits and supplies its result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented obtaining a result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver drops every event; it backs executors constructed
// without console observers.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
