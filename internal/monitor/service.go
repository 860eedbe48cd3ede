package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	unknownMetricValueConstant        = -1
	statusFileModeConstant            = 0o644
	statusDirectoryModeConstant       = 0o755
	cpuMetricLabelConstant            = "cpu"
	memoryMetricLabelConstant         = "memory"
	diskMetricLabelConstant           = "disk"
	scheduledJobsMetricLabelConstant  = "scheduled_jobs"
	thresholdAlertTemplateConstant    = "%s usage %.1f%% above threshold %.1f%%"
	probeAlertTemplateConstant        = "%s usage unavailable"
	processAlertTemplateConstant      = "process %s not running"
	loggerRequiredMessageConstant     = "logger not configured"
	executorRequiredMessageConstant   = "probe executor not configured"
	probesRequiredMessageConstant     = "host probes not configured"
	notifierRequiredMessageConstant   = "notifier not configured"
	probeWarningMessageConstant       = "Host probe failed"
	statusWriteWarningMessageConstant = "Unable to write status report"
	heartbeatWarningMessageConstant   = "Unable to deliver heartbeat"
	webhookWarningMessageConstant     = "Unable to deliver alert webhook"
	checkCompleteLogMessageConstant   = "Health check complete"
	metricFieldNameConstant           = "metric"
	statusPathFieldNameConstant       = "status_file"
	healthyFieldNameConstant          = "healthy"
	alertCountFieldNameConstant       = "alert_count"
)

// Validation errors reported during monitor construction.
var (
	ErrLoggerNotConfigured   = errors.New(loggerRequiredMessageConstant)
	ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)
	ErrProbesNotConfigured   = errors.New(probesRequiredMessageConstant)
	ErrNotifierNotConfigured = errors.New(notifierRequiredMessageConstant)
)

// MetricProbes samples host utilization figures.
type MetricProbes interface {
	CPUPercent(executionContext context.Context) (float64, error)
	MemoryPercent(executionContext context.Context) (float64, error)
	DiskPercent(executionContext context.Context) (float64, error)
	ProcessRunning(executionContext context.Context, processPattern string) (bool, error)
	ScheduledJobCount(executionContext context.Context) (int, error)
}

// Notifier delivers heartbeat pings and alert payloads.
type Notifier interface {
	Ping(executionContext context.Context, heartbeatURL string, healthy bool) error
	SendAlerts(executionContext context.Context, webhookURL string, hostName string, occurredAt time.Time, alerts []string) error
}

// Clock supplies the current time for status reports.
type Clock func() time.Time

// HostNameResolver supplies the local host name.
type HostNameResolver func() string

// CheckOptions describes one monitoring run.
type CheckOptions struct {
	StatusFilePath  string
	HeartbeatURL    string
	WebhookURL      string
	Processes       []string
	CPUThreshold    float64
	MemoryThreshold float64
	DiskThreshold   float64
}

// StatusReport is the JSON document written after every run.
type StatusReport struct {
	Timestamp     time.Time       `json:"timestamp"`
	Host          string          `json:"host"`
	CPUPercent    float64         `json:"cpu_percent"`
	MemoryPercent float64         `json:"memory_percent"`
	DiskPercent   float64         `json:"disk_percent"`
	Processes     map[string]bool `json:"processes"`
	ScheduledJobs int             `json:"scheduled_jobs"`
	Healthy       bool            `json:"healthy"`
	Alerts        []string        `json:"alerts"`
}

// Service runs host health checks and publishes their outcome.
type Service struct {
	logger       *zap.Logger
	probes       MetricProbes
	notifier     Notifier
	clock        Clock
	hostResolver HostNameResolver
}

// NewService constructs a monitoring service using the wall clock and OS host name.
func NewService(logger *zap.Logger, probes MetricProbes, notifier Notifier) (*Service, error) {
	return NewServiceWithDependencies(logger, probes, notifier, time.Now, defaultHostNameResolver)
}

// NewServiceWithDependencies constructs a monitoring service with explicit collaborators.
func NewServiceWithDependencies(logger *zap.Logger, probes MetricProbes, notifier Notifier, clock Clock, hostResolver HostNameResolver) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if probes == nil {
		return nil, ErrProbesNotConfigured
	}
	if notifier == nil {
		return nil, ErrNotifierNotConfigured
	}
	if clock == nil {
		clock = time.Now
	}
	if hostResolver == nil {
		hostResolver = defaultHostNameResolver
	}

	return &Service{logger: logger, probes: probes, notifier: notifier, clock: clock, hostResolver: hostResolver}, nil
}

func defaultHostNameResolver() string {
	hostName, hostError := os.Hostname()
	if hostError != nil {
		return ""
	}
	return hostName
}

// Check samples host metrics, writes the status report, and notifies the
// configured endpoints.
//
// Probe and delivery failures are logged and absorbed so scheduled runs always
// finish cleanly.
func (service *Service) Check(executionContext context.Context, options CheckOptions) error {
	statusReport := StatusReport{
		Timestamp: service.clock(),
		Host:      service.hostResolver(),
		Processes: map[string]bool{},
		Alerts:    []string{},
	}

	statusReport.CPUPercent = service.sampleMetric(executionContext, cpuMetricLabelConstant, options.CPUThreshold, service.probes.CPUPercent, &statusReport)
	statusReport.MemoryPercent = service.sampleMetric(executionContext, memoryMetricLabelConstant, options.MemoryThreshold, service.probes.MemoryPercent, &statusReport)
	statusReport.DiskPercent = service.sampleMetric(executionContext, diskMetricLabelConstant, options.DiskThreshold, service.probes.DiskPercent, &statusReport)

	for _, processPattern := range options.Processes {
		processAlive, probeError := service.probes.ProcessRunning(executionContext, processPattern)
		if probeError != nil {
			service.logger.Warn(probeWarningMessageConstant,
				zap.String(metricFieldNameConstant, processPattern),
				zap.Error(probeError),
			)
			processAlive = false
		}
		statusReport.Processes[processPattern] = processAlive
		if !processAlive {
			statusReport.Alerts = append(statusReport.Alerts, fmt.Sprintf(processAlertTemplateConstant, processPattern))
		}
	}

	scheduledJobCount, scheduleProbeError := service.probes.ScheduledJobCount(executionContext)
	if scheduleProbeError != nil {
		service.logger.Warn(probeWarningMessageConstant,
			zap.String(metricFieldNameConstant, scheduledJobsMetricLabelConstant),
			zap.Error(scheduleProbeError),
		)
		scheduledJobCount = unknownMetricValueConstant
	}
	statusReport.ScheduledJobs = scheduledJobCount

	statusReport.Healthy = len(statusReport.Alerts) == 0

	service.writeStatusReport(options.StatusFilePath, statusReport)
	service.deliverNotifications(executionContext, options, statusReport)

	service.logger.Info(checkCompleteLogMessageConstant,
		zap.Bool(healthyFieldNameConstant, statusReport.Healthy),
		zap.Int(alertCountFieldNameConstant, len(statusReport.Alerts)),
	)

	return nil
}

func (service *Service) sampleMetric(executionContext context.Context, metricLabel string, threshold float64, probe func(context.Context) (float64, error), statusReport *StatusReport) float64 {
	metricValue, probeError := probe(executionContext)
	if probeError != nil {
		service.logger.Warn(probeWarningMessageConstant,
			zap.String(metricFieldNameConstant, metricLabel),
			zap.Error(probeError),
		)
		statusReport.Alerts = append(statusReport.Alerts, fmt.Sprintf(probeAlertTemplateConstant, metricLabel))
		return unknownMetricValueConstant
	}

	if metricValue > threshold {
		statusReport.Alerts = append(statusReport.Alerts, fmt.Sprintf(thresholdAlertTemplateConstant, metricLabel, metricValue, threshold))
	}

	return metricValue
}

func (service *Service) writeStatusReport(statusFilePath string, statusReport StatusReport) {
	if len(statusFilePath) == 0 {
		return
	}

	reportBytes, encodingError := json.MarshalIndent(statusReport, "", "  ")
	if encodingError != nil {
		service.logger.Warn(statusWriteWarningMessageConstant, zap.String(statusPathFieldNameConstant, statusFilePath), zap.Error(encodingError))
		return
	}

	if directoryError := os.MkdirAll(filepath.Dir(statusFilePath), statusDirectoryModeConstant); directoryError != nil {
		service.logger.Warn(statusWriteWarningMessageConstant, zap.String(statusPathFieldNameConstant, statusFilePath), zap.Error(directoryError))
		return
	}

	if writeError := os.WriteFile(statusFilePath, reportBytes, statusFileModeConstant); writeError != nil {
		service.logger.Warn(statusWriteWarningMessageConstant, zap.String(statusPathFieldNameConstant, statusFilePath), zap.Error(writeError))
	}
}

func (service *Service) deliverNotifications(executionContext context.Context, options CheckOptions, statusReport StatusReport) {
	if len(options.HeartbeatURL) > 0 {
		if pingError := service.notifier.Ping(executionContext, options.HeartbeatURL, statusReport.Healthy); pingError != nil {
			service.logger.Warn(heartbeatWarningMessageConstant, zap.Error(pingError))
		}
	}

	if len(options.WebhookURL) > 0 && len(statusReport.Alerts) > 0 {
		deliveryError := service.notifier.SendAlerts(executionContext, options.WebhookURL, statusReport.Host, statusReport.Timestamp, statusReport.Alerts)
		if deliveryError != nil {
			service.logger.Warn(webhookWarningMessageConstant, zap.Error(deliveryError))
		}
	}
}
