package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trendloop/trendops/internal/execshell"
)

const (
	messageGitCommitCaseNameConstant      = "git_commit"
	messageGitPushCaseNameConstant        = "git_push"
	messageGitAddCaseNameConstant         = "git_add"
	messageSnapshotCreateCaseNameConstant = "aws_create_snapshot"
	messageSnapshotDeleteCaseNameConstant = "aws_delete_snapshot"
	messageCrontabInstallCaseNameConstant = "crontab_install"
	messageGenericCurlCaseNameConstant    = "curl_generic"
	messageRepositoryPathConstant         = "/srv/trendloop"
	messageCommitTextConstant             = "Auto-sync: Daily backup 2026-08-23"
	messageSnapshotIdentifierConstant     = "snap-0abc123"
)

func TestCommandMessageFormatterScenarios(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name                 string
		command              execshell.ShellCommand
		expectedStartMessage string
		expectedDoneMessage  string
	}{
		{
			name: messageGitCommitCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        []string{"commit", "-m", messageCommitTextConstant},
					WorkingDirectory: messageRepositoryPathConstant,
				},
			},
			expectedStartMessage: "Creating commit in /srv/trendloop with message \"Auto-sync: Daily backup 2026-08-23\"",
			expectedDoneMessage:  "Created commit in /srv/trendloop with message \"Auto-sync: Daily backup 2026-08-23\"",
		},
		{
			name: messageGitPushCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        []string{"push", "origin", "main"},
					WorkingDirectory: messageRepositoryPathConstant,
				},
			},
			expectedStartMessage: "Pushing main to origin from /srv/trendloop",
			expectedDoneMessage:  "Pushed main to origin from /srv/trendloop",
		},
		{
			name: messageGitAddCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        []string{"add", "--", "docs", ".gitignore"},
					WorkingDirectory: messageRepositoryPathConstant,
				},
			},
			expectedStartMessage: "Staging docs .gitignore in /srv/trendloop",
			expectedDoneMessage:  "Staged docs .gitignore in /srv/trendloop",
		},
		{
			name: messageSnapshotCreateCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandAWS,
				Details: execshell.CommandDetails{
					Arguments: []string{"--region", "us-east-1", "ec2", "create-snapshot", "--volume-id", "vol-1"},
				},
			},
			expectedStartMessage: "Requesting EBS snapshot creation",
			expectedDoneMessage:  "Requested EBS snapshot creation",
		},
		{
			name: messageSnapshotDeleteCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandAWS,
				Details: execshell.CommandDetails{
					Arguments: []string{"--region", "us-east-1", "ec2", "delete-snapshot", "--snapshot-id", messageSnapshotIdentifierConstant},
				},
			},
			expectedStartMessage: "Deleting EBS snapshot snap-0abc123",
			expectedDoneMessage:  "Deleted EBS snapshot snap-0abc123",
		},
		{
			name: messageCrontabInstallCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandCrontab,
				Details: execshell.CommandDetails{
					Arguments:     []string{"-"},
					StandardInput: []byte("0 5 * * 0 trendops snapshot-rotate\n"),
				},
			},
			expectedStartMessage: "Installing scheduled jobs",
			expectedDoneMessage:  "Scheduled jobs up to date",
		},
		{
			name: messageGenericCurlCaseNameConstant,
			command: execshell.ShellCommand{
				Name: execshell.CommandCurl,
				Details: execshell.CommandDetails{
					Arguments: []string{"-fsS", "https://hc-ping.com/example"},
				},
			},
			expectedStartMessage: "Running curl -fsS https://hc-ping.com/example",
			expectedDoneMessage:  "Completed curl -fsS https://hc-ping.com/example",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStartMessage, formatter.BuildStartedMessage(testCase.command))
			require.Equal(testInstance, testCase.expectedDoneMessage, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureDetails(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	pushCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"push", "origin", "main"},
			WorkingDirectory: messageRepositoryPathConstant,
		},
	}

	failureMessage := formatter.BuildFailureMessage(pushCommand, execshell.ExecutionResult{ExitCode: 128, StandardError: "authentication failed"})
	require.Equal(testInstance, "Failed to push main to origin from /srv/trendloop (exit code 128: authentication failed)", failureMessage)
}
