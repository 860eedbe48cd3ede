package setup

import "strings"

const (
	defaultRegionConstant           = "us-east-1"
	defaultTopicNameConstant        = "trendloop-alerts"
	defaultExecutablePathConstant   = "/usr/local/bin/trendops"
	defaultSyncScheduleConstant     = "0 23 * * *"
	defaultSnapshotScheduleConstant = "0 5 * * 0"
)

// CommandConfiguration captures configuration values for the AWS setup command.
type CommandConfiguration struct {
	InstanceID       string `mapstructure:"instance_id"`
	Region           string `mapstructure:"region"`
	AlertEmail       string `mapstructure:"alert_email"`
	TopicName        string `mapstructure:"topic_name"`
	ExecutablePath   string `mapstructure:"executable_path"`
	SyncSchedule     string `mapstructure:"sync_schedule"`
	SnapshotSchedule string `mapstructure:"snapshot_schedule"`
}

// DefaultCommandConfiguration provides baseline configuration values for AWS setup.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		InstanceID:       "",
		Region:           defaultRegionConstant,
		AlertEmail:       "",
		TopicName:        defaultTopicNameConstant,
		ExecutablePath:   defaultExecutablePathConstant,
		SyncSchedule:     defaultSyncScheduleConstant,
		SnapshotSchedule: defaultSnapshotScheduleConstant,
	}
}

// DefaultConfigurationValues exposes baseline values keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + ".region":            defaults.Region,
		configurationPrefix + ".topic_name":        defaults.TopicName,
		configurationPrefix + ".executable_path":   defaults.ExecutablePath,
		configurationPrefix + ".sync_schedule":     defaults.SyncSchedule,
		configurationPrefix + ".snapshot_schedule": defaults.SnapshotSchedule,
	}
}

// sanitize trims configuration values and restores defaults for empty entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.InstanceID = strings.TrimSpace(configuration.InstanceID)
	sanitized.Region = fallbackValue(configuration.Region, defaultRegionConstant)
	sanitized.AlertEmail = strings.TrimSpace(configuration.AlertEmail)
	sanitized.TopicName = fallbackValue(configuration.TopicName, defaultTopicNameConstant)
	sanitized.ExecutablePath = fallbackValue(configuration.ExecutablePath, defaultExecutablePathConstant)
	sanitized.SyncSchedule = fallbackValue(configuration.SyncSchedule, defaultSyncScheduleConstant)
	sanitized.SnapshotSchedule = fallbackValue(configuration.SnapshotSchedule, defaultSnapshotScheduleConstant)

	return sanitized
}

func fallbackValue(rawValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
