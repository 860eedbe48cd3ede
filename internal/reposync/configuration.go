package reposync

import "strings"

const (
	defaultRemoteNameConstant        = "origin"
	defaultBranchNameConstant        = "main"
	defaultRepositoryPathConstant    = "."
	defaultEnvironmentFileConstant   = ".env"
	defaultCommitAuthorNameConstant  = "TrendLoop Backup"
	defaultCommitAuthorEmailConstant = "backup@trendloop.local"
)

// defaultStagingTargets lists the content paths staged on every sync run.
func defaultStagingTargets() []string {
	return []string{"docs/", "agents/", "data/", "*.py", "*.sh", "*.md", ".gitignore"}
}

// CommandConfiguration captures configuration values for the repository sync command.
type CommandConfiguration struct {
	RepositoryPath      string   `mapstructure:"repository_path"`
	RemoteName          string   `mapstructure:"remote"`
	BranchName          string   `mapstructure:"branch"`
	EnvironmentFilePath string   `mapstructure:"env_file"`
	CommitAuthorName    string   `mapstructure:"author_name"`
	CommitAuthorEmail   string   `mapstructure:"author_email"`
	StagingTargets      []string `mapstructure:"targets"`
}

// DefaultCommandConfiguration provides baseline configuration values for repository sync.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:      defaultRepositoryPathConstant,
		RemoteName:          defaultRemoteNameConstant,
		BranchName:          defaultBranchNameConstant,
		EnvironmentFilePath: defaultEnvironmentFileConstant,
		CommitAuthorName:    defaultCommitAuthorNameConstant,
		CommitAuthorEmail:   defaultCommitAuthorEmailConstant,
		StagingTargets:      defaultStagingTargets(),
	}
}

// DefaultConfigurationValues exposes baseline values keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + ".repository_path": defaults.RepositoryPath,
		configurationPrefix + ".remote":          defaults.RemoteName,
		configurationPrefix + ".branch":          defaults.BranchName,
		configurationPrefix + ".env_file":        defaults.EnvironmentFilePath,
		configurationPrefix + ".author_name":     defaults.CommitAuthorName,
		configurationPrefix + ".author_email":    defaults.CommitAuthorEmail,
		configurationPrefix + ".targets":         defaults.StagingTargets,
	}
}

// sanitize trims configuration values and restores defaults for empty entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RepositoryPath = fallbackValue(configuration.RepositoryPath, defaultRepositoryPathConstant)
	sanitized.RemoteName = fallbackValue(configuration.RemoteName, defaultRemoteNameConstant)
	sanitized.BranchName = fallbackValue(configuration.BranchName, defaultBranchNameConstant)
	sanitized.EnvironmentFilePath = strings.TrimSpace(configuration.EnvironmentFilePath)
	sanitized.CommitAuthorName = fallbackValue(configuration.CommitAuthorName, defaultCommitAuthorNameConstant)
	sanitized.CommitAuthorEmail = fallbackValue(configuration.CommitAuthorEmail, defaultCommitAuthorEmailConstant)
	sanitized.StagingTargets = sanitizeTargets(configuration.StagingTargets)

	return sanitized
}

func fallbackValue(rawValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}

func sanitizeTargets(rawTargets []string) []string {
	sanitized := make([]string, 0, len(rawTargets))
	for _, candidateTarget := range rawTargets {
		trimmedTarget := strings.TrimSpace(candidateTarget)
		if len(trimmedTarget) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmedTarget)
	}
	if len(sanitized) == 0 {
		return defaultStagingTargets()
	}
	return sanitized
}
