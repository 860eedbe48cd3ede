package monitor

import "strings"

const (
	defaultStatusFilePathConstant  = "/var/lib/trendops/status.json"
	defaultCPUThresholdConstant    = 85
	defaultMemoryThresholdConstant = 85
	defaultDiskThresholdConstant   = 90
)

// CommandConfiguration captures configuration values for the monitor command.
type CommandConfiguration struct {
	StatusFilePath  string   `mapstructure:"status_file"`
	HeartbeatURL    string   `mapstructure:"heartbeat_url"`
	WebhookURL      string   `mapstructure:"webhook_url"`
	Processes       []string `mapstructure:"processes"`
	CPUThreshold    float64  `mapstructure:"cpu_threshold"`
	MemoryThreshold float64  `mapstructure:"memory_threshold"`
	DiskThreshold   float64  `mapstructure:"disk_threshold"`
}

// DefaultCommandConfiguration provides baseline configuration values for monitoring.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		StatusFilePath:  defaultStatusFilePathConstant,
		HeartbeatURL:    "",
		WebhookURL:      "",
		Processes:       nil,
		CPUThreshold:    defaultCPUThresholdConstant,
		MemoryThreshold: defaultMemoryThresholdConstant,
		DiskThreshold:   defaultDiskThresholdConstant,
	}
}

// DefaultConfigurationValues exposes baseline values keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + ".status_file":      defaults.StatusFilePath,
		configurationPrefix + ".cpu_threshold":    defaults.CPUThreshold,
		configurationPrefix + ".memory_threshold": defaults.MemoryThreshold,
		configurationPrefix + ".disk_threshold":   defaults.DiskThreshold,
	}
}

// sanitize trims configuration values and restores defaults for empty entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.StatusFilePath = strings.TrimSpace(configuration.StatusFilePath)
	if len(sanitized.StatusFilePath) == 0 {
		sanitized.StatusFilePath = defaultStatusFilePathConstant
	}
	sanitized.HeartbeatURL = strings.TrimSpace(configuration.HeartbeatURL)
	sanitized.WebhookURL = strings.TrimSpace(configuration.WebhookURL)
	sanitized.Processes = sanitizeProcesses(configuration.Processes)
	if sanitized.CPUThreshold <= 0 {
		sanitized.CPUThreshold = defaultCPUThresholdConstant
	}
	if sanitized.MemoryThreshold <= 0 {
		sanitized.MemoryThreshold = defaultMemoryThresholdConstant
	}
	if sanitized.DiskThreshold <= 0 {
		sanitized.DiskThreshold = defaultDiskThresholdConstant
	}

	return sanitized
}

func sanitizeProcesses(rawProcesses []string) []string {
	sanitized := make([]string, 0, len(rawProcesses))
	for _, candidateProcess := range rawProcesses {
		trimmedProcess := strings.TrimSpace(candidateProcess)
		if len(trimmedProcess) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmedProcess)
	}
	return sanitized
}
