package reposync_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/reposync"
)

const (
	testRepositoryPathConstant    = "/srv/trendloop"
	testRemoteNameConstant        = "origin"
	testBranchNameConstant        = "main"
	testAccessTokenConstant       = "ghp_example"
	testRemoteURLConstant         = "https://github.com/yss007895-code/TrendLoop-USA.git"
	expectedAuthenticatedConstant = "https://ghp_example@github.com/yss007895-code/TrendLoop-USA.git"
	expectedCommitMessageConstant = "Auto-sync: Daily backup 2026-08-23"
	missingTokenCaseNameConstant  = "missing_token_skips_run"
	cleanIndexCaseNameConstant    = "clean_index_skips_commit"
	changesCaseNameConstant       = "staged_changes_commit_and_push"
	pushFailureCaseNameConstant   = "push_failure_absorbed"
)

type scriptedGitExecutor struct {
	recordedArguments [][]string
	remoteURLOutput   string
	remoteURLError    error
	diffError         error
	commitError       error
	pushError         error
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedArguments = append(executor.recordedArguments, details.Arguments)

	switch details.Arguments[0] {
	case "remote":
		if details.Arguments[1] == "get-url" {
			if executor.remoteURLError != nil {
				return execshell.ExecutionResult{}, executor.remoteURLError
			}
			return execshell.ExecutionResult{StandardOutput: executor.remoteURLOutput + "\n"}, nil
		}
		return execshell.ExecutionResult{}, nil
	case "diff":
		if executor.diffError != nil {
			return execshell.ExecutionResult{}, executor.diffError
		}
		return execshell.ExecutionResult{}, nil
	case "commit":
		if executor.commitError != nil {
			return execshell.ExecutionResult{}, executor.commitError
		}
		return execshell.ExecutionResult{}, nil
	case "push":
		if executor.pushError != nil {
			return execshell.ExecutionResult{}, executor.pushError
		}
		return execshell.ExecutionResult{}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *scriptedGitExecutor) countBySubcommand(subcommand string) int {
	matches := 0
	for _, arguments := range executor.recordedArguments {
		if len(arguments) > 0 && arguments[0] == subcommand {
			matches++
		}
	}
	return matches
}

func stagedChangesError() error {
	return execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}}
}

func fixedTestClock() time.Time {
	return time.Date(2026, time.August, 23, 4, 30, 0, 0, time.UTC)
}

func availableTokenResolver(string) (string, bool) {
	return testAccessTokenConstant, true
}

func missingTokenResolver(string) (string, bool) {
	return "", false
}

func defaultSyncOptions() reposync.SyncOptions {
	return reposync.SyncOptions{
		RepositoryPath:    testRepositoryPathConstant,
		RemoteName:        testRemoteNameConstant,
		BranchName:        testBranchNameConstant,
		CommitAuthorName:  "TrendLoop Backup",
		CommitAuthorEmail: "backup@trendloop.local",
		StagingTargets:    []string{"docs/", "agents/", "data/", "*.py", "*.sh", "*.md", ".gitignore"},
	}
}

func buildObservedService(testInstance *testing.T, executor *scriptedGitExecutor, tokenResolver reposync.TokenResolver) (*reposync.Service, *observer.ObservedLogs) {
	testInstance.Helper()

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	service, creationError := reposync.NewServiceWithDependencies(zap.New(observedCore), executor, tokenResolver, fixedTestClock)
	require.NoError(testInstance, creationError)

	return service, observedLogs
}

func TestServiceValidation(testInstance *testing.T) {
	_, missingLoggerError := reposync.NewService(nil, &scriptedGitExecutor{})
	require.ErrorIs(testInstance, missingLoggerError, reposync.ErrLoggerNotConfigured)

	_, missingExecutorError := reposync.NewService(zap.NewNop(), nil)
	require.ErrorIs(testInstance, missingExecutorError, reposync.ErrExecutorNotConfigured)
}

func TestSyncScenarios(testInstance *testing.T) {
	testInstance.Run(missingTokenCaseNameConstant, func(testInstance *testing.T) {
		executor := &scriptedGitExecutor{}
		service, observedLogs := buildObservedService(testInstance, executor, missingTokenResolver)

		syncError := service.Sync(context.Background(), defaultSyncOptions())
		require.NoError(testInstance, syncError)
		require.Empty(testInstance, executor.recordedArguments)
		require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Skipping repository sync").Len())
	})

	testInstance.Run(cleanIndexCaseNameConstant, func(testInstance *testing.T) {
		executor := &scriptedGitExecutor{remoteURLOutput: testRemoteURLConstant}
		service, observedLogs := buildObservedService(testInstance, executor, availableTokenResolver)

		syncError := service.Sync(context.Background(), defaultSyncOptions())
		require.NoError(testInstance, syncError)
		require.Zero(testInstance, executor.countBySubcommand("commit"))
		require.Zero(testInstance, executor.countBySubcommand("push"))
		require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("No changes to back up").Len())
	})

	testInstance.Run(changesCaseNameConstant, func(testInstance *testing.T) {
		executor := &scriptedGitExecutor{remoteURLOutput: testRemoteURLConstant, diffError: stagedChangesError()}
		service, observedLogs := buildObservedService(testInstance, executor, availableTokenResolver)

		options := defaultSyncOptions()
		syncError := service.Sync(context.Background(), options)
		require.NoError(testInstance, syncError)

		require.Equal(testInstance, len(options.StagingTargets), executor.countBySubcommand("add"))
		require.Equal(testInstance, 1, executor.countBySubcommand("commit"))
		require.Equal(testInstance, 1, executor.countBySubcommand("push"))
		require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Backup pushed").Len())

		recordedCommitMessage := ""
		recordedAuthenticatedURL := ""
		recordedPushArguments := []string{}
		for _, arguments := range executor.recordedArguments {
			joinedArguments := strings.Join(arguments, " ")
			if strings.HasPrefix(joinedArguments, "commit -m ") {
				recordedCommitMessage = arguments[2]
			}
			if strings.HasPrefix(joinedArguments, "remote set-url ") {
				recordedAuthenticatedURL = arguments[3]
			}
			if strings.HasPrefix(joinedArguments, "push ") {
				recordedPushArguments = arguments
			}
		}
		require.Equal(testInstance, expectedCommitMessageConstant, recordedCommitMessage)
		require.Equal(testInstance, expectedAuthenticatedConstant, recordedAuthenticatedURL)
		require.Equal(testInstance, []string{"push", testRemoteNameConstant, testBranchNameConstant}, recordedPushArguments)
	})

	testInstance.Run(pushFailureCaseNameConstant, func(testInstance *testing.T) {
		executor := &scriptedGitExecutor{
			remoteURLOutput: testRemoteURLConstant,
			diffError:       stagedChangesError(),
			pushError:       errors.New("remote rejected"),
		}
		service, observedLogs := buildObservedService(testInstance, executor, availableTokenResolver)

		syncError := service.Sync(context.Background(), defaultSyncOptions())
		require.NoError(testInstance, syncError)
		require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Unable to push backup commit").Len())
	})

	testInstance.Run("remote_inspection_failure_still_commits", func(testInstance *testing.T) {
		executor := &scriptedGitExecutor{
			remoteURLError: errors.New("no such remote"),
			diffError:      stagedChangesError(),
		}
		service, observedLogs := buildObservedService(testInstance, executor, availableTokenResolver)

		syncError := service.Sync(context.Background(), defaultSyncOptions())
		require.NoError(testInstance, syncError)
		require.Equal(testInstance, 1, executor.countBySubcommand("commit"))
		require.Equal(testInstance, 1, executor.countBySubcommand("push"))
		require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Unable to refresh authenticated remote").Len())
	})
}
