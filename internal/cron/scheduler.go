package cron

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/execshell"
)

const (
	listFlagConstant                = "-l"
	stdinSourceArgumentConstant     = "-"
	entrySeparatorConstant          = "\n"
	missingCrontabExitCodeConstant  = 1
	loggerRequiredMessageConstant   = "logger not configured"
	executorRequiredMessageConstant = "crontab executor not configured"
	entriesInstalledLogConstant     = "Scheduled jobs installed"
	entriesCurrentLogConstant       = "Scheduled jobs already installed"
	installedCountFieldNameConstant = "installed_count"
)

// ErrLoggerNotConfigured indicates the scheduler requires a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrExecutorNotConfigured indicates the scheduler requires a crontab executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// CrontabExecutor is the minimal interface required from execshell.ShellExecutor.
type CrontabExecutor interface {
	ExecuteCrontab(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Scheduler manages the invoking user's crontab entries.
type Scheduler struct {
	logger   *zap.Logger
	executor CrontabExecutor
}

// NewScheduler constructs a crontab scheduler.
func NewScheduler(logger *zap.Logger, executor CrontabExecutor) (*Scheduler, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	return &Scheduler{logger: logger, executor: executor}, nil
}

// CurrentEntries returns the existing crontab lines.
//
// An absent crontab reads as an empty entry list rather than an error.
func (scheduler *Scheduler) CurrentEntries(executionContext context.Context) ([]string, error) {
	listResult, listError := scheduler.executor.ExecuteCrontab(executionContext, execshell.CommandDetails{
		Arguments: []string{listFlagConstant},
	})
	if listError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(listError, &commandFailure) && commandFailure.Result.ExitCode == missingCrontabExitCodeConstant {
			return nil, nil
		}
		return nil, listError
	}

	currentEntries := []string{}
	for _, rawLine := range strings.Split(listResult.StandardOutput, entrySeparatorConstant) {
		trimmedLine := strings.TrimRight(rawLine, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		currentEntries = append(currentEntries, trimmedLine)
	}

	return currentEntries, nil
}

// EnsureEntries installs the given crontab lines, preserving existing ones.
//
// Lines already present are not duplicated; when every requested line exists
// the crontab is left untouched.
func (scheduler *Scheduler) EnsureEntries(executionContext context.Context, requestedEntries []string) error {
	currentEntries, listError := scheduler.CurrentEntries(executionContext)
	if listError != nil {
		return listError
	}

	existingEntries := map[string]struct{}{}
	for _, currentEntry := range currentEntries {
		existingEntries[strings.TrimSpace(currentEntry)] = struct{}{}
	}

	combinedEntries := append([]string{}, currentEntries...)
	installedCount := 0
	for _, requestedEntry := range requestedEntries {
		trimmedEntry := strings.TrimSpace(requestedEntry)
		if len(trimmedEntry) == 0 {
			continue
		}
		if _, alreadyPresent := existingEntries[trimmedEntry]; alreadyPresent {
			continue
		}
		existingEntries[trimmedEntry] = struct{}{}
		combinedEntries = append(combinedEntries, trimmedEntry)
		installedCount++
	}

	if installedCount == 0 {
		scheduler.logger.Info(entriesCurrentLogConstant)
		return nil
	}

	crontabContent := strings.Join(combinedEntries, entrySeparatorConstant) + entrySeparatorConstant
	_, installError := scheduler.executor.ExecuteCrontab(executionContext, execshell.CommandDetails{
		Arguments:     []string{stdinSourceArgumentConstant},
		StandardInput: []byte(crontabContent),
	})
	if installError != nil {
		return installError
	}

	scheduler.logger.Info(entriesInstalledLogConstant, zap.Int(installedCountFieldNameConstant, installedCount))
	return nil
}
