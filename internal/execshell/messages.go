package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	unknownFailureMessageConstant           = "unknown error"
)

const (
	gitConfigSubcommandNameConstant = "config"
	gitRemoteSubcommandNameConstant = "remote"
	gitAddSubcommandNameConstant    = "add"
	gitDiffSubcommandNameConstant   = "diff"
	gitCommitSubcommandNameConstant = "commit"
	gitPushSubcommandNameConstant   = "push"
)

const (
	gitConfigStartTemplateConstant            = "Configuring %s in %s"
	gitConfigSuccessTemplateConstant          = "Configured %s in %s"
	gitConfigFailureTemplateConstant          = "Failed to configure %s in %s (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant = "Unable to configure %s in %s: %s"
	gitRemoteStartTemplateConstant            = "Updating remote configuration in %s"
	gitRemoteSuccessTemplateConstant          = "Updated remote configuration in %s"
	gitRemoteFailureTemplateConstant          = "Failed to update remote configuration in %s (exit code %d%s)"
	gitRemoteExecutionFailureTemplateConstant = "Unable to update remote configuration in %s: %s"
	gitAddStartTemplateConstant               = "Staging %s in %s"
	gitAddSuccessTemplateConstant             = "Staged %s in %s"
	gitAddFailureTemplateConstant             = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant    = "Unable to stage %s in %s: %s"
	gitDiffStartTemplateConstant              = "Reviewing staged changes in %s"
	gitDiffSuccessTemplateConstant            = "Reviewed staged changes in %s"
	gitDiffFailureTemplateConstant            = "Staged changes detected in %s"
	gitDiffExecutionFailureTemplateConstant   = "Unable to review staged changes in %s: %s"
	gitCommitStartTemplateConstant            = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant          = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant          = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant = "Unable to create commit in %s with message %q: %s"
	gitPushStartTemplateConstant              = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant            = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant            = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant   = "Unable to push %s to %s from %s: %s"
	gitCommitMessageFlagConstant              = "-m"
	defaultWorkingDirectoryLabelConstant      = "current directory"
	fallbackUnknownValueLabelConstant         = "unknown"
)

const (
	awsEC2ServiceNameConstant               = "ec2"
	awsCreateSnapshotSubcommandConstant     = "create-snapshot"
	awsDescribeSnapshotsSubcommandConstant  = "describe-snapshots"
	awsDeleteSnapshotSubcommandConstant     = "delete-snapshot"
	awsSnapshotIDFlagConstant               = "--snapshot-id"
	awsServiceArgumentOffsetConstant        = 2
	awsRegionFlagConstant                   = "--region"
	awsSnapshotCreateStartTemplateConstant  = "Requesting EBS snapshot creation"
	awsSnapshotCreateSuccessConstant        = "Requested EBS snapshot creation"
	awsSnapshotCreateFailureTemplate        = "EBS snapshot creation failed (exit code %d%s)"
	awsSnapshotCreateExecFailureTemplate    = "Unable to request EBS snapshot creation: %s"
	awsSnapshotListStartConstant            = "Listing tagged EBS snapshots"
	awsSnapshotListSuccessConstant          = "Listed tagged EBS snapshots"
	awsSnapshotListFailureTemplate          = "Failed to list tagged EBS snapshots (exit code %d%s)"
	awsSnapshotListExecFailureTemplate      = "Unable to list tagged EBS snapshots: %s"
	awsSnapshotDeleteStartTemplateConstant  = "Deleting EBS snapshot %s"
	awsSnapshotDeleteSuccessTemplate        = "Deleted EBS snapshot %s"
	awsSnapshotDeleteFailureTemplate        = "Failed to delete EBS snapshot %s (exit code %d%s)"
	awsSnapshotDeleteExecFailureTemplate    = "Unable to delete EBS snapshot %s: %s"
	awsGenericStartTemplateConstant         = "Calling AWS %s %s"
	awsGenericSuccessTemplateConstant       = "Completed AWS %s %s"
	awsGenericFailureTemplateConstant       = "AWS %s %s failed (exit code %d%s)"
	awsGenericExecutionFailureTemplate      = "Unable to call AWS %s %s: %s"
	crontabStartMessageConstant             = "Reading scheduled jobs"
	crontabInstallStartMessageConstant      = "Installing scheduled jobs"
	crontabSuccessMessageConstant           = "Scheduled jobs up to date"
	crontabFailureTemplateConstant          = "Crontab update failed (exit code %d%s)"
	crontabExecutionFailureTemplateConstant = "Unable to update crontab: %s"
	crontabStdinInstallMarkerConstant       = "-"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandAWS:
		return formatter.describeAWSMessage(command, result, failure, stage)
	case CommandCrontab:
		return formatter.describeCrontabMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitConfigSubcommandNameConstant:
		configurationKey := formatter.argumentAt(command.Details.Arguments, 1)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigStartTemplateConstant, configurationKey, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitConfigSuccessTemplateConstant, configurationKey, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitConfigFailureTemplateConstant, configurationKey, workingDirectory, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitConfigExecutionFailureTemplateConstant, configurationKey, workingDirectory, formatter.describeFailure(failure))
		}
	case gitRemoteSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteFailureTemplateConstant, workingDirectory, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitRemoteExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	case gitAddSubcommandNameConstant:
		stagedTarget := formatter.describeStagedTarget(command.Details.Arguments)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitAddStartTemplateConstant, stagedTarget, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitAddSuccessTemplateConstant, stagedTarget, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitAddFailureTemplateConstant, stagedTarget, workingDirectory, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, stagedTarget, workingDirectory, formatter.describeFailure(failure))
		}
	case gitDiffSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitDiffStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitDiffSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitDiffFailureTemplateConstant, workingDirectory)
		default:
			return fmt.Sprintf(gitDiffExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.describeCommitMessage(command.Details.Arguments)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
		case messageStageSuccess:
			return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
		case messageStageFailure:
			return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
		}
	case gitPushSubcommandNameConstant:
		remoteName := formatter.argumentAt(command.Details.Arguments, 1)
		branchName := formatter.argumentAt(command.Details.Arguments, 2)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitPushFailureTemplateConstant, branchName, remoteName, workingDirectory, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchName, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeAWSMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	serviceName, serviceSubcommand := formatter.locateAWSSubcommand(command.Details.Arguments)

	if serviceName == awsEC2ServiceNameConstant {
		switch serviceSubcommand {
		case awsCreateSnapshotSubcommandConstant:
			switch stage {
			case messageStageStart:
				return awsSnapshotCreateStartTemplateConstant
			case messageStageSuccess:
				return awsSnapshotCreateSuccessConstant
			case messageStageFailure:
				return fmt.Sprintf(awsSnapshotCreateFailureTemplate, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
			default:
				return fmt.Sprintf(awsSnapshotCreateExecFailureTemplate, formatter.describeFailure(failure))
			}
		case awsDescribeSnapshotsSubcommandConstant:
			switch stage {
			case messageStageStart:
				return awsSnapshotListStartConstant
			case messageStageSuccess:
				return awsSnapshotListSuccessConstant
			case messageStageFailure:
				return fmt.Sprintf(awsSnapshotListFailureTemplate, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
			default:
				return fmt.Sprintf(awsSnapshotListExecFailureTemplate, formatter.describeFailure(failure))
			}
		case awsDeleteSnapshotSubcommandConstant:
			snapshotIdentifier := formatter.flagValue(command.Details.Arguments, awsSnapshotIDFlagConstant)
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(awsSnapshotDeleteStartTemplateConstant, snapshotIdentifier)
			case messageStageSuccess:
				return fmt.Sprintf(awsSnapshotDeleteSuccessTemplate, snapshotIdentifier)
			case messageStageFailure:
				return fmt.Sprintf(awsSnapshotDeleteFailureTemplate, snapshotIdentifier, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
			default:
				return fmt.Sprintf(awsSnapshotDeleteExecFailureTemplate, snapshotIdentifier, formatter.describeFailure(failure))
			}
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(awsGenericStartTemplateConstant, serviceName, serviceSubcommand)
	case messageStageSuccess:
		return fmt.Sprintf(awsGenericSuccessTemplateConstant, serviceName, serviceSubcommand)
	case messageStageFailure:
		return fmt.Sprintf(awsGenericFailureTemplateConstant, serviceName, serviceSubcommand, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(awsGenericExecutionFailureTemplate, serviceName, serviceSubcommand, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeCrontabMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		if containsArgument(command.Details.Arguments, crontabStdinInstallMarkerConstant) {
			return crontabInstallStartMessageConstant
		}
		return crontabStartMessageConstant
	case messageStageSuccess:
		return crontabSuccessMessageConstant
	case messageStageFailure:
		return fmt.Sprintf(crontabFailureTemplateConstant, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(crontabExecutionFailureTemplateConstant, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := describeCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) describeStagedTarget(arguments []string) string {
	stagedPaths := []string{}
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		candidateArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(candidateArgument) == 0 || strings.HasPrefix(candidateArgument, "-") {
			continue
		}
		stagedPaths = append(stagedPaths, candidateArgument)
	}
	if len(stagedPaths) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.Join(stagedPaths, commandLabelJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) describeCommitMessage(arguments []string) string {
	for argumentIndex, argumentValue := range arguments {
		if argumentValue == gitCommitMessageFlagConstant && argumentIndex+1 < len(arguments) {
			return arguments[argumentIndex+1]
		}
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) argumentAt(arguments []string, position int) string {
	if position >= len(arguments) {
		return fallbackUnknownValueLabelConstant
	}
	trimmedArgument := strings.TrimSpace(arguments[position])
	if len(trimmedArgument) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedArgument
}

func (formatter CommandMessageFormatter) locateAWSSubcommand(arguments []string) (string, string) {
	positionalArguments := []string{}
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		candidateArgument := strings.TrimSpace(arguments[argumentIndex])
		if candidateArgument == awsRegionFlagConstant {
			argumentIndex++
			continue
		}
		if strings.HasPrefix(candidateArgument, "-") {
			continue
		}
		positionalArguments = append(positionalArguments, candidateArgument)
		if len(positionalArguments) == awsServiceArgumentOffsetConstant {
			break
		}
	}
	serviceName := fallbackUnknownValueLabelConstant
	serviceSubcommand := fallbackUnknownValueLabelConstant
	if len(positionalArguments) > 0 {
		serviceName = positionalArguments[0]
	}
	if len(positionalArguments) > 1 {
		serviceSubcommand = positionalArguments[1]
	}
	return serviceName, serviceSubcommand
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flagName string) string {
	for argumentIndex, argumentValue := range arguments {
		if argumentValue == flagName && argumentIndex+1 < len(arguments) {
			return arguments[argumentIndex+1]
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, expectedArgument string) bool {
	for _, argumentValue := range arguments {
		if strings.TrimSpace(argumentValue) == expectedArgument {
			return true
		}
	}
	return false
}
