package maintenance

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerRequiredMessageConstant  = "logger not configured"
	actionsRequiredMessageConstant = "step actions not configured"
	stepStartedLogMessageConstant  = "Running maintenance step"
	stepFailedLogMessageConstant   = "Maintenance step failed"
	planCompleteLogMessageConstant = "Maintenance plan complete"
	actionMissingWarningConstant   = "No action registered for operation"
	operationFieldNameConstant     = "operation"
	stepIndexFieldNameConstant     = "step"
	stepCountFieldNameConstant     = "step_count"
	failedCountFieldNameConstant   = "failed_count"
)

// ErrLoggerNotConfigured indicates the runner requires a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrActionsNotConfigured indicates the runner requires at least one action.
var ErrActionsNotConfigured = errors.New(actionsRequiredMessageConstant)

// StepAction executes one maintenance operation with its decoded options.
type StepAction func(executionContext context.Context, options map[string]any) error

// Runner executes maintenance plans step by step.
type Runner struct {
	logger  *zap.Logger
	actions map[OperationType]StepAction
}

// NewRunner constructs a plan runner over the registered actions.
func NewRunner(logger *zap.Logger, actions map[OperationType]StepAction) (*Runner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if len(actions) == 0 {
		return nil, ErrActionsNotConfigured
	}

	return &Runner{logger: logger, actions: actions}, nil
}

// Run executes every step in order.
//
// A failing step is logged and counted; later steps still run.
func (runner *Runner) Run(executionContext context.Context, plan Plan) error {
	failedCount := 0
	for stepIndex, stepDefinition := range plan.Steps {
		runner.logger.Info(stepStartedLogMessageConstant,
			zap.Int(stepIndexFieldNameConstant, stepIndex),
			zap.String(operationFieldNameConstant, string(stepDefinition.Operation)),
		)

		stepAction, actionRegistered := runner.actions[stepDefinition.Operation]
		if !actionRegistered {
			failedCount++
			runner.logger.Warn(actionMissingWarningConstant,
				zap.Int(stepIndexFieldNameConstant, stepIndex),
				zap.String(operationFieldNameConstant, string(stepDefinition.Operation)),
			)
			continue
		}

		if stepError := stepAction(executionContext, stepDefinition.Options); stepError != nil {
			failedCount++
			runner.logger.Warn(stepFailedLogMessageConstant,
				zap.Int(stepIndexFieldNameConstant, stepIndex),
				zap.String(operationFieldNameConstant, string(stepDefinition.Operation)),
				zap.Error(stepError),
			)
		}
	}

	runner.logger.Info(planCompleteLogMessageConstant,
		zap.Int(stepCountFieldNameConstant, len(plan.Steps)),
		zap.Int(failedCountFieldNameConstant, failedCount),
	)

	return nil
}
