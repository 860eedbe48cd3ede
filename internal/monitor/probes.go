package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/trendloop/trendops/internal/execshell"
)

const (
	topBinaryNameConstant             = "top"
	freeBinaryNameConstant            = "free"
	diskBinaryNameConstant            = "df"
	processLookupBinaryNameConstant   = "pgrep"
	crontabBinaryNameConstant         = "crontab"
	topBatchFlagConstant              = "-bn1"
	memoryMegabytesFlagConstant       = "-m"
	portableOutputFlagConstant        = "-P"
	processExactMatchFlagConstant     = "-x"
	crontabListFlagConstant           = "-l"
	rootFilesystemPathConstant        = "/"
	cronCommentPrefixConstant         = "#"
	cpuSummaryLineMarkerConstant      = "Cpu(s)"
	cpuIdleFieldSuffixConstant        = "id"
	cpuFieldSeparatorConstant         = ","
	memorySummaryLinePrefixConstant   = "Mem:"
	fullUtilizationPercentConstant    = 100
	minimumMemoryFieldCountConstant   = 3
	minimumDiskLineCountConstant      = 2
	minimumDiskFieldCountConstant     = 5
	diskUsageFieldIndexConstant       = 4
	percentSuffixConstant             = "%"
	processAbsentExitCodeConstant     = 1
	missingCrontabExitCodeConstant    = 1
	unparseableOutputTemplateConstant = "unable to parse %s output"
)

// ProbeExecutor is the subset of execshell.ShellExecutor used by host probes.
type ProbeExecutor interface {
	ExecuteProbe(executionContext context.Context, binaryName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// HostProbes samples utilization metrics from standard host utilities.
type HostProbes struct {
	executor ProbeExecutor
}

// NewHostProbes constructs host probes over the provided executor.
func NewHostProbes(executor ProbeExecutor) (*HostProbes, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &HostProbes{executor: executor}, nil
}

// CPUPercent reports current CPU utilization derived from the top idle figure.
func (probes *HostProbes) CPUPercent(executionContext context.Context) (float64, error) {
	probeResult, probeError := probes.executor.ExecuteProbe(executionContext, topBinaryNameConstant, execshell.CommandDetails{
		Arguments: []string{topBatchFlagConstant},
	})
	if probeError != nil {
		return 0, probeError
	}

	for _, outputLine := range strings.Split(probeResult.StandardOutput, "\n") {
		if !strings.Contains(outputLine, cpuSummaryLineMarkerConstant) {
			continue
		}
		for _, cpuSegment := range strings.Split(outputLine, cpuFieldSeparatorConstant) {
			segmentFields := strings.Fields(cpuSegment)
			if len(segmentFields) < 2 || segmentFields[1] != cpuIdleFieldSuffixConstant {
				continue
			}
			idlePercent, parseError := strconv.ParseFloat(segmentFields[0], 64)
			if parseError != nil {
				return 0, fmt.Errorf(unparseableOutputTemplateConstant, topBinaryNameConstant)
			}
			return fullUtilizationPercentConstant - idlePercent, nil
		}
	}

	return 0, fmt.Errorf(unparseableOutputTemplateConstant, topBinaryNameConstant)
}

// MemoryPercent reports used memory as a share of total memory.
func (probes *HostProbes) MemoryPercent(executionContext context.Context) (float64, error) {
	probeResult, probeError := probes.executor.ExecuteProbe(executionContext, freeBinaryNameConstant, execshell.CommandDetails{
		Arguments: []string{memoryMegabytesFlagConstant},
	})
	if probeError != nil {
		return 0, probeError
	}

	for _, outputLine := range strings.Split(probeResult.StandardOutput, "\n") {
		if !strings.HasPrefix(outputLine, memorySummaryLinePrefixConstant) {
			continue
		}
		memoryFields := strings.Fields(outputLine)
		if len(memoryFields) < minimumMemoryFieldCountConstant {
			break
		}
		totalMemory, totalParseError := strconv.ParseFloat(memoryFields[1], 64)
		usedMemory, usedParseError := strconv.ParseFloat(memoryFields[2], 64)
		if totalParseError != nil || usedParseError != nil || totalMemory == 0 {
			break
		}
		return usedMemory / totalMemory * fullUtilizationPercentConstant, nil
	}

	return 0, fmt.Errorf(unparseableOutputTemplateConstant, freeBinaryNameConstant)
}

// DiskPercent reports root filesystem utilization.
func (probes *HostProbes) DiskPercent(executionContext context.Context) (float64, error) {
	probeResult, probeError := probes.executor.ExecuteProbe(executionContext, diskBinaryNameConstant, execshell.CommandDetails{
		Arguments: []string{portableOutputFlagConstant, rootFilesystemPathConstant},
	})
	if probeError != nil {
		return 0, probeError
	}

	outputLines := strings.Split(strings.TrimSpace(probeResult.StandardOutput), "\n")
	if len(outputLines) < minimumDiskLineCountConstant {
		return 0, fmt.Errorf(unparseableOutputTemplateConstant, diskBinaryNameConstant)
	}

	diskFields := strings.Fields(outputLines[len(outputLines)-1])
	if len(diskFields) < minimumDiskFieldCountConstant {
		return 0, fmt.Errorf(unparseableOutputTemplateConstant, diskBinaryNameConstant)
	}

	usagePercent, parseError := strconv.ParseFloat(strings.TrimSuffix(diskFields[diskUsageFieldIndexConstant], percentSuffixConstant), 64)
	if parseError != nil {
		return 0, fmt.Errorf(unparseableOutputTemplateConstant, diskBinaryNameConstant)
	}

	return usagePercent, nil
}

// ProcessRunning reports whether a process matching the pattern is alive.
func (probes *HostProbes) ProcessRunning(executionContext context.Context, processPattern string) (bool, error) {
	_, probeError := probes.executor.ExecuteProbe(executionContext, processLookupBinaryNameConstant, execshell.CommandDetails{
		Arguments: []string{processExactMatchFlagConstant, processPattern},
	})
	if probeError == nil {
		return true, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(probeError, &commandFailure) && commandFailure.Result.ExitCode == processAbsentExitCodeConstant {
		return false, nil
	}

	return false, probeError
}

// ScheduledJobCount reports the number of active entries in the user crontab.
// A missing crontab counts as zero entries.
func (probes *HostProbes) ScheduledJobCount(executionContext context.Context) (int, error) {
	probeResult, probeError := probes.executor.ExecuteProbe(executionContext, crontabBinaryNameConstant, execshell.CommandDetails{
		Arguments: []string{crontabListFlagConstant},
	})
	if probeError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(probeError, &commandFailure) && commandFailure.Result.ExitCode == missingCrontabExitCodeConstant {
			return 0, nil
		}
		return 0, probeError
	}

	entryCount := 0
	for _, crontabLine := range strings.Split(probeResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(crontabLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, cronCommentPrefixConstant) {
			continue
		}
		entryCount++
	}

	return entryCount, nil
}
