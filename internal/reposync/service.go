package reposync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/envfile"
	"github.com/trendloop/trendops/internal/execshell"
	"github.com/trendloop/trendops/internal/gitrepo"
)

const (
	configSubcommandConstant              = "config"
	remoteSubcommandConstant              = "remote"
	remoteGetURLSubcommandConstant        = "get-url"
	remoteSetURLSubcommandConstant        = "set-url"
	addSubcommandConstant                 = "add"
	diffSubcommandConstant                = "diff"
	commitSubcommandConstant              = "commit"
	pushSubcommandConstant                = "push"
	cachedFlagConstant                    = "--cached"
	quietFlagConstant                     = "--quiet"
	commitMessageFlagConstant             = "-m"
	userNameConfigKeyConstant             = "user.name"
	userEmailConfigKeyConstant            = "user.email"
	commitMessageTemplateConstant         = "Auto-sync: Daily backup "
	commitDateLayoutConstant              = "2006-01-02"
	diffChangesPresentExitCodeConstant    = 1
	loggerRequiredMessageConstant         = "logger not configured"
	executorRequiredMessageConstant       = "git executor not configured"
	tokenMissingLogMessageConstant        = "Skipping repository sync: no GitHub token available"
	identityConfigWarningMessageConstant  = "Unable to set commit identity"
	remoteRewriteWarningMessageConstant   = "Unable to refresh authenticated remote"
	stagingWarningMessageConstant         = "Unable to stage sync target"
	diffInspectionWarningMessageConstant  = "Unable to inspect staged changes"
	nothingStagedLogMessageConstant       = "No changes to back up"
	commitWarningMessageConstant          = "Unable to commit staged changes"
	pushWarningMessageConstant            = "Unable to push backup commit"
	backupPushedLogMessageConstant        = "Backup pushed"
	repositoryFieldNameConstant           = "repository"
	remoteFieldNameConstant               = "remote"
	branchFieldNameConstant               = "branch"
	targetFieldNameConstant               = "target"
	commitMessageFieldNameConstant        = "commit_message"
	configurationIdentityKeyFieldConstant = "key"
)

// ErrLoggerNotConfigured indicates the service requires a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrExecutorNotConfigured indicates the service requires a git executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TokenResolver locates a GitHub access token from the environment or an env file.
type TokenResolver func(environmentFilePath string) (string, bool)

// Clock supplies the current time for commit message dating.
type Clock func() time.Time

// SyncOptions describes a single repository sync run.
type SyncOptions struct {
	RepositoryPath      string
	RemoteName          string
	BranchName          string
	EnvironmentFilePath string
	CommitAuthorName    string
	CommitAuthorEmail   string
	StagingTargets      []string
}

// Service performs the daily backup workflow against one repository.
type Service struct {
	logger        *zap.Logger
	executor      GitExecutor
	tokenResolver TokenResolver
	clock         Clock
}

// NewService constructs a sync service with production token resolution and clock.
func NewService(logger *zap.Logger, executor GitExecutor) (*Service, error) {
	return NewServiceWithDependencies(logger, executor, envfile.ResolveToken, time.Now)
}

// NewServiceWithDependencies constructs a sync service with explicit collaborators.
func NewServiceWithDependencies(logger *zap.Logger, executor GitExecutor, tokenResolver TokenResolver, clock Clock) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if tokenResolver == nil {
		tokenResolver = envfile.ResolveToken
	}
	if clock == nil {
		clock = time.Now
	}

	return &Service{logger: logger, executor: executor, tokenResolver: tokenResolver, clock: clock}, nil
}

// Sync stages, commits, and pushes the configured targets.
//
// Operational failures are logged and absorbed so scheduled runs always finish
// cleanly; a missing token skips the run entirely.
func (service *Service) Sync(executionContext context.Context, options SyncOptions) error {
	accessToken, tokenAvailable := service.tokenResolver(options.EnvironmentFilePath)
	if !tokenAvailable {
		service.logger.Info(tokenMissingLogMessageConstant, zap.String(repositoryFieldNameConstant, options.RepositoryPath))
		return nil
	}

	service.configureCommitIdentity(executionContext, options)
	service.refreshAuthenticatedRemote(executionContext, options, accessToken)
	service.stageTargets(executionContext, options)

	changesStaged, inspectionError := service.stagedChangesPresent(executionContext, options)
	if inspectionError != nil {
		service.logger.Warn(diffInspectionWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.Error(inspectionError),
		)
		return nil
	}
	if !changesStaged {
		service.logger.Info(nothingStagedLogMessageConstant, zap.String(repositoryFieldNameConstant, options.RepositoryPath))
		return nil
	}

	commitMessage := commitMessageTemplateConstant + service.clock().Format(commitDateLayoutConstant)
	commitDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, commitMessageFlagConstant, commitMessage},
		WorkingDirectory: options.RepositoryPath,
	}
	if _, commitError := service.executor.ExecuteGit(executionContext, commitDetails); commitError != nil {
		service.logger.Warn(commitWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(commitMessageFieldNameConstant, commitMessage),
			zap.Error(commitError),
		)
		return nil
	}

	pushDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, options.RemoteName, options.BranchName},
		WorkingDirectory: options.RepositoryPath,
	}
	if _, pushError := service.executor.ExecuteGit(executionContext, pushDetails); pushError != nil {
		service.logger.Warn(pushWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(remoteFieldNameConstant, options.RemoteName),
			zap.String(branchFieldNameConstant, options.BranchName),
			zap.Error(pushError),
		)
		return nil
	}

	service.logger.Info(backupPushedLogMessageConstant,
		zap.String(repositoryFieldNameConstant, options.RepositoryPath),
		zap.String(remoteFieldNameConstant, options.RemoteName),
		zap.String(branchFieldNameConstant, options.BranchName),
		zap.String(commitMessageFieldNameConstant, commitMessage),
	)

	return nil
}

func (service *Service) configureCommitIdentity(executionContext context.Context, options SyncOptions) {
	identityEntries := []struct {
		configurationKey string
		value            string
	}{
		{configurationKey: userNameConfigKeyConstant, value: options.CommitAuthorName},
		{configurationKey: userEmailConfigKeyConstant, value: options.CommitAuthorEmail},
	}

	for _, identityEntry := range identityEntries {
		if len(identityEntry.value) == 0 {
			continue
		}
		configDetails := execshell.CommandDetails{
			Arguments:        []string{configSubcommandConstant, identityEntry.configurationKey, identityEntry.value},
			WorkingDirectory: options.RepositoryPath,
		}
		if _, configError := service.executor.ExecuteGit(executionContext, configDetails); configError != nil {
			service.logger.Warn(identityConfigWarningMessageConstant,
				zap.String(repositoryFieldNameConstant, options.RepositoryPath),
				zap.String(configurationIdentityKeyFieldConstant, identityEntry.configurationKey),
				zap.Error(configError),
			)
		}
	}
}

func (service *Service) refreshAuthenticatedRemote(executionContext context.Context, options SyncOptions, accessToken string) {
	getURLDetails := execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteGetURLSubcommandConstant, options.RemoteName},
		WorkingDirectory: options.RepositoryPath,
	}
	getURLResult, getURLError := service.executor.ExecuteGit(executionContext, getURLDetails)
	if getURLError != nil {
		service.logger.Warn(remoteRewriteWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(remoteFieldNameConstant, options.RemoteName),
			zap.Error(getURLError),
		)
		return
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(getURLResult.StandardOutput)
	if parseError != nil {
		service.logger.Warn(remoteRewriteWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(remoteFieldNameConstant, options.RemoteName),
			zap.Error(parseError),
		)
		return
	}

	authenticatedURL, formatError := gitrepo.FormatAuthenticatedURL(parsedRemote, accessToken)
	if formatError != nil {
		service.logger.Warn(remoteRewriteWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(remoteFieldNameConstant, options.RemoteName),
			zap.Error(formatError),
		)
		return
	}

	setURLDetails := execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteSetURLSubcommandConstant, options.RemoteName, authenticatedURL},
		WorkingDirectory: options.RepositoryPath,
	}
	if _, setURLError := service.executor.ExecuteGit(executionContext, setURLDetails); setURLError != nil {
		service.logger.Warn(remoteRewriteWarningMessageConstant,
			zap.String(repositoryFieldNameConstant, options.RepositoryPath),
			zap.String(remoteFieldNameConstant, options.RemoteName),
			zap.Error(setURLError),
		)
	}
}

func (service *Service) stageTargets(executionContext context.Context, options SyncOptions) {
	for _, stagingTarget := range options.StagingTargets {
		addDetails := execshell.CommandDetails{
			Arguments:        []string{addSubcommandConstant, stagingTarget},
			WorkingDirectory: options.RepositoryPath,
		}
		if _, addError := service.executor.ExecuteGit(executionContext, addDetails); addError != nil {
			service.logger.Debug(stagingWarningMessageConstant,
				zap.String(repositoryFieldNameConstant, options.RepositoryPath),
				zap.String(targetFieldNameConstant, stagingTarget),
				zap.Error(addError),
			)
		}
	}
}

// stagedChangesPresent reports whether the index differs from HEAD.
//
// git diff --cached --quiet exits 0 when the index is clean and 1 when staged
// changes exist; other exit codes surface as inspection errors.
func (service *Service) stagedChangesPresent(executionContext context.Context, options SyncOptions) (bool, error) {
	diffDetails := execshell.CommandDetails{
		Arguments:        []string{diffSubcommandConstant, cachedFlagConstant, quietFlagConstant},
		WorkingDirectory: options.RepositoryPath,
	}

	_, diffError := service.executor.ExecuteGit(executionContext, diffDetails)
	if diffError == nil {
		return false, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(diffError, &commandFailure) && commandFailure.Result.ExitCode == diffChangesPresentExitCodeConstant {
		return true, nil
	}

	return false, diffError
}
