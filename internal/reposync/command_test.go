package reposync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/envfile"
	"github.com/trendloop/trendops/internal/reposync"
)

const (
	commandUseExpectationConstant = "repo-sync"
)

func TestCommandBuilderBuild(testInstance *testing.T) {
	builder := &reposync.CommandBuilder{}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, commandUseExpectationConstant, command.Use)
	require.NotNil(testInstance, command.Flags().Lookup("repository"))
	require.NotNil(testInstance, command.Flags().Lookup("remote"))
	require.NotNil(testInstance, command.Flags().Lookup("branch"))
	require.NotNil(testInstance, command.Flags().Lookup("env-file"))
}

func TestCommandRejectsPositionalArguments(testInstance *testing.T) {
	builder := &reposync.CommandBuilder{Executor: &scriptedGitExecutor{}}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs([]string{"unexpected"})
	require.Error(testInstance, command.ExecuteContext(context.Background()))
}

func TestCommandSkipsWhenTokenMissing(testInstance *testing.T) {
	testInstance.Setenv(envfile.EnvGitHubCLIToken, "")
	testInstance.Setenv(envfile.EnvGitHubToken, "")
	testInstance.Setenv(envfile.EnvGitHubAPIToken, "")

	executor := &scriptedGitExecutor{}
	builder := &reposync.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Executor:       executor,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs([]string{})
	require.NoError(testInstance, command.ExecuteContext(context.Background()))
	require.Empty(testInstance, executor.recordedArguments)
}
