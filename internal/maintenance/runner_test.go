package maintenance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trendloop/trendops/internal/maintenance"
)

func TestRunnerValidation(testInstance *testing.T) {
	actions := map[maintenance.OperationType]maintenance.StepAction{
		maintenance.OperationMonitor: func(context.Context, map[string]any) error { return nil },
	}

	_, missingLoggerError := maintenance.NewRunner(nil, actions)
	require.ErrorIs(testInstance, missingLoggerError, maintenance.ErrLoggerNotConfigured)

	_, missingActionsError := maintenance.NewRunner(zap.NewNop(), nil)
	require.ErrorIs(testInstance, missingActionsError, maintenance.ErrActionsNotConfigured)
}

func TestRunExecutesStepsInOrder(testInstance *testing.T) {
	executedOperations := []string{}
	recordedOptions := []map[string]any{}
	actions := map[maintenance.OperationType]maintenance.StepAction{
		maintenance.OperationRepoSync: func(_ context.Context, options map[string]any) error {
			executedOperations = append(executedOperations, "repo-sync")
			recordedOptions = append(recordedOptions, options)
			return nil
		},
		maintenance.OperationSnapshotRotate: func(_ context.Context, options map[string]any) error {
			executedOperations = append(executedOperations, "snapshot-rotate")
			recordedOptions = append(recordedOptions, options)
			return nil
		},
	}

	runner, creationError := maintenance.NewRunner(zap.NewNop(), actions)
	require.NoError(testInstance, creationError)

	plan := maintenance.Plan{Steps: []maintenance.StepDefinition{
		{Operation: maintenance.OperationRepoSync, Options: map[string]any{"branch": "main"}},
		{Operation: maintenance.OperationSnapshotRotate, Options: map[string]any{"retain": 4}},
	}}

	require.NoError(testInstance, runner.Run(context.Background(), plan))
	require.Equal(testInstance, []string{"repo-sync", "snapshot-rotate"}, executedOperations)
	require.Equal(testInstance, map[string]any{"branch": "main"}, recordedOptions[0])
}

func TestRunContinuesAfterStepFailure(testInstance *testing.T) {
	executedOperations := []string{}
	actions := map[maintenance.OperationType]maintenance.StepAction{
		maintenance.OperationRepoSync: func(context.Context, map[string]any) error {
			executedOperations = append(executedOperations, "repo-sync")
			return errors.New("push rejected")
		},
		maintenance.OperationMonitor: func(context.Context, map[string]any) error {
			executedOperations = append(executedOperations, "monitor")
			return nil
		},
	}

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	runner, creationError := maintenance.NewRunner(zap.New(observedCore), actions)
	require.NoError(testInstance, creationError)

	plan := maintenance.Plan{Steps: []maintenance.StepDefinition{
		{Operation: maintenance.OperationRepoSync},
		{Operation: maintenance.OperationMonitor},
	}}

	require.NoError(testInstance, runner.Run(context.Background(), plan))
	require.Equal(testInstance, []string{"repo-sync", "monitor"}, executedOperations)
	require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Maintenance step failed").Len())
	require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Maintenance plan complete").Len())
}

func TestRunReportsMissingAction(testInstance *testing.T) {
	actions := map[maintenance.OperationType]maintenance.StepAction{
		maintenance.OperationMonitor: func(context.Context, map[string]any) error { return nil },
	}

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	runner, creationError := maintenance.NewRunner(zap.New(observedCore), actions)
	require.NoError(testInstance, creationError)

	plan := maintenance.Plan{Steps: []maintenance.StepDefinition{{Operation: maintenance.OperationRepoSync}}}

	require.NoError(testInstance, runner.Run(context.Background(), plan))
	require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("No action registered").Len())
}
