package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationInfoMessageConstant            = "\"msg\":\"trendops CLI executed\""
	integrationDebugMessageConstant           = "\"msg\":\"trendops CLI diagnostics\""
	integrationLogLevelEnvKeyConstant         = "TRENDOPS_COMMON_LOG_LEVEL"
	integrationConfigFileNameConstant         = "config.yaml"
	integrationConfigTemplateConstant         = "common:\n  log_level: %s\n"
	integrationDefaultCaseNameConstant        = "default_info"
	integrationConfigCaseNameConstant         = "config_debug"
	integrationEnvironmentCaseNameConstant    = "environment_error"
	integrationDebugLevelConstant             = "debug"
	integrationErrorLevelConstant             = "error"
	integrationCommandTimeout                 = 2 * time.Minute
	integrationConfigFlagTemplateConstant     = "--config=%s"
	integrationSubtestNameTemplateConstant    = "%d_%s"
	integrationHelpUsagePrefixConstant        = "Usage:"
	integrationHelpDescriptionSnippetConstant = "trendops ships the scheduled operations used on TrendLoop hosts"
	integrationHelpCaseNameConstant           = "help_output"
)

func TestCLIIntegrationLogLevels(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationLevel   string
		environmentLevel     string
		expectedInfoVisible  bool
		expectedDebugVisible bool
	}{
		{
			name:                 integrationDefaultCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: false,
		},
		{
			name:                 integrationConfigCaseNameConstant,
			configurationLevel:   integrationDebugLevelConstant,
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: true,
		},
		{
			name:                 integrationEnvironmentCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     integrationErrorLevelConstant,
			expectedInfoVisible:  false,
			expectedDebugVisible: false,
		},
	}

	repositoryRoot := repositoryRootDirectory(testInstance)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var arguments []string
			environmentOverrides := map[string]string{}
			tempDirectory := testInstance.TempDir()

			if len(testCase.configurationLevel) > 0 {
				configurationPath := filepath.Join(tempDirectory, integrationConfigFileNameConstant)
				configurationContent := fmt.Sprintf(integrationConfigTemplateConstant, testCase.configurationLevel)
				writeError := os.WriteFile(configurationPath, []byte(configurationContent), 0o600)
				require.NoError(testInstance, writeError)
				arguments = append(arguments, fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath))
			}

			if len(testCase.environmentLevel) > 0 {
				environmentOverrides[integrationLogLevelEnvKeyConstant] = testCase.environmentLevel
			}

			outputText, runError := runIntegrationCommand(testInstance, repositoryRoot, environmentOverrides, integrationCommandTimeout, arguments)
			requireNoError(testInstance, runError, outputText)

			if testCase.expectedInfoVisible {
				require.Contains(testInstance, outputText, integrationInfoMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationInfoMessageConstant)
			}

			if testCase.expectedDebugVisible {
				require.Contains(testInstance, outputText, integrationDebugMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationDebugMessageConstant)
			}
		})
	}
}

func TestCLIIntegrationDisplaysHelpWhenNoArgumentsProvided(testInstance *testing.T) {
	testCases := []struct {
		name             string
		expectedSnippets []string
	}{
		{
			name: integrationHelpCaseNameConstant,
			expectedSnippets: []string{
				integrationHelpUsagePrefixConstant,
				integrationHelpDescriptionSnippetConstant,
			},
		},
	}

	repositoryRoot := repositoryRootDirectory(testInstance)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputText, runError := runIntegrationCommand(testInstance, repositoryRoot, map[string]string{}, integrationCommandTimeout, nil)
			requireNoError(testInstance, runError, outputText)

			for _, expectedSnippet := range testCase.expectedSnippets {
				require.Contains(testInstance, outputText, expectedSnippet)
			}
		})
	}
}
