package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	maintenanceCommandNameConstant        = "maintenance"
	maintenancePlanFlagTemplateConstant   = "--plan=%s"
	maintenancePlanFileNameConstant       = "plan.yaml"
	maintenanceCompleteMessageConstant    = "\"msg\":\"Maintenance plan complete\""
	maintenanceMissingFlagMessageConstant = "maintenance requires --plan"
	maintenanceUnknownOperationPlan       = "steps:\n  - operation: reboot-host\n"
	maintenanceRepoSyncPlan               = "maintenance:\n  steps:\n    - operation: repo-sync\n      with:\n        env_file: missing.env\n"
	maintenanceSuccessCaseNameConstant    = "plan_runs_to_completion"
	maintenanceMissingFlagCaseName        = "plan_flag_required"
	maintenanceUnknownOperationCaseName   = "unknown_operation_rejected"
)

func TestMaintenanceIntegrationRunsPlan(testInstance *testing.T) {
	testCases := []struct {
		name            string
		planContent     string
		omitPlanFlag    bool
		expectError     bool
		expectedSnippet string
	}{
		{
			name:            maintenanceSuccessCaseNameConstant,
			planContent:     maintenanceRepoSyncPlan,
			expectError:     false,
			expectedSnippet: maintenanceCompleteMessageConstant,
		},
		{
			name:            maintenanceMissingFlagCaseName,
			omitPlanFlag:    true,
			expectError:     true,
			expectedSnippet: maintenanceMissingFlagMessageConstant,
		},
		{
			name:            maintenanceUnknownOperationCaseName,
			planContent:     maintenanceUnknownOperationPlan,
			expectError:     true,
			expectedSnippet: "unknown operation",
		},
	}

	repositoryRoot := repositoryRootDirectory(testInstance)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			arguments := []string{maintenanceCommandNameConstant}

			if !testCase.omitPlanFlag {
				planPath := filepath.Join(testInstance.TempDir(), maintenancePlanFileNameConstant)
				writeError := os.WriteFile(planPath, []byte(testCase.planContent), 0o600)
				require.NoError(testInstance, writeError)
				arguments = append(arguments, fmt.Sprintf(maintenancePlanFlagTemplateConstant, planPath))
			}

			outputText, runError := runIntegrationCommand(testInstance, repositoryRoot, map[string]string{}, integrationCommandTimeout, arguments)

			if testCase.expectError {
				require.Error(testInstance, runError, outputText)
			} else {
				requireNoError(testInstance, runError, outputText)
			}

			require.Contains(testInstance, outputText, testCase.expectedSnippet)
		})
	}
}
