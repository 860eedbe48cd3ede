package snapshot

import "strings"

const (
	defaultRetainCountConstant  = 4
	defaultSnapshotNameConstant = "trendloop-backup"
	defaultRegionConstant       = "us-east-1"
)

// CommandConfiguration captures configuration values for snapshot rotation.
type CommandConfiguration struct {
	VolumeID     string `mapstructure:"volume_id"`
	InstanceID   string `mapstructure:"instance_id"`
	Region       string `mapstructure:"region"`
	SnapshotName string `mapstructure:"snapshot_name"`
	RetainCount  int    `mapstructure:"retain"`
	DryRun       bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline configuration values for snapshot rotation.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		VolumeID:     "",
		InstanceID:   "",
		Region:       defaultRegionConstant,
		SnapshotName: defaultSnapshotNameConstant,
		RetainCount:  defaultRetainCountConstant,
		DryRun:       false,
	}
}

// DefaultConfigurationValues exposes baseline values keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + ".region":        defaults.Region,
		configurationPrefix + ".snapshot_name": defaults.SnapshotName,
		configurationPrefix + ".retain":        defaults.RetainCount,
	}
}

// sanitize trims configuration values and restores defaults for empty entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.VolumeID = strings.TrimSpace(configuration.VolumeID)
	sanitized.InstanceID = strings.TrimSpace(configuration.InstanceID)
	sanitized.Region = strings.TrimSpace(configuration.Region)
	if len(sanitized.Region) == 0 {
		sanitized.Region = defaultRegionConstant
	}
	sanitized.SnapshotName = strings.TrimSpace(configuration.SnapshotName)
	if len(sanitized.SnapshotName) == 0 {
		sanitized.SnapshotName = defaultSnapshotNameConstant
	}
	if sanitized.RetainCount <= 0 {
		sanitized.RetainCount = defaultRetainCountConstant
	}

	return sanitized
}
