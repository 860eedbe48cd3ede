package envfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trendloop/trendops/internal/envfile"
)

const (
	envFileNameConstant                  = ".env"
	parseBasicCaseNameConstant           = "basic_assignments"
	parseCommentsCaseNameConstant        = "comments_and_blanks_ignored"
	parseLastValueWinsCaseNameConstant   = "later_values_win"
	parseExportPrefixCaseNameConstant    = "export_prefix_stripped"
	parseQuotedValuesCaseNameConstant    = "quoted_values_unwrapped"
	tokenFromEnvironmentCaseNameConstant = "token_from_environment"
	tokenFromFileCaseNameConstant        = "token_from_file"
	tokenMissingCaseNameConstant         = "token_missing"
	tokenEnvironmentValueConstant        = "env-token"
	tokenFileValueConstant               = "file-token"
)

func writeEnvFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(testInstance.TempDir(), envFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestParseScenarios(testInstance *testing.T) {
	testCases := []struct {
		name           string
		fileContent    string
		expectedValues map[string]string
	}{
		{
			name:        parseBasicCaseNameConstant,
			fileContent: "GITHUB_TOKEN=abc\nHEALTHCHECK_PING_URL=https://hc-ping.com/x\n",
			expectedValues: map[string]string{
				"GITHUB_TOKEN":         "abc",
				"HEALTHCHECK_PING_URL": "https://hc-ping.com/x",
			},
		},
		{
			name:        parseCommentsCaseNameConstant,
			fileContent: "# leading comment\n\nGITHUB_TOKEN=abc\n   \n# trailing comment\n",
			expectedValues: map[string]string{
				"GITHUB_TOKEN": "abc",
			},
		},
		{
			name:        parseLastValueWinsCaseNameConstant,
			fileContent: "GITHUB_TOKEN=first\nGITHUB_TOKEN=second\n",
			expectedValues: map[string]string{
				"GITHUB_TOKEN": "second",
			},
		},
		{
			name:        parseExportPrefixCaseNameConstant,
			fileContent: "export GITHUB_TOKEN=abc\n",
			expectedValues: map[string]string{
				"GITHUB_TOKEN": "abc",
			},
		},
		{
			name:        parseQuotedValuesCaseNameConstant,
			fileContent: "GITHUB_TOKEN=\"abc\"\nMONITOR_WEBHOOK_URL='https://example.com/hook'\n",
			expectedValues: map[string]string{
				"GITHUB_TOKEN":        "abc",
				"MONITOR_WEBHOOK_URL": "https://example.com/hook",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			filePath := writeEnvFile(testInstance, testCase.fileContent)

			parsedValues, parseError := envfile.Parse(filePath)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValues, parsedValues)
		})
	}
}

func TestParseMissingFileReturnsError(testInstance *testing.T) {
	_, parseError := envfile.Parse(filepath.Join(testInstance.TempDir(), envFileNameConstant))
	require.Error(testInstance, parseError)
}

func TestResolveTokenScenarios(testInstance *testing.T) {
	testCases := []struct {
		name             string
		environmentToken string
		fileContent      string
		expectedToken    string
		expectedFound    bool
	}{
		{
			name:             tokenFromEnvironmentCaseNameConstant,
			environmentToken: tokenEnvironmentValueConstant,
			fileContent:      "GITHUB_TOKEN=" + tokenFileValueConstant + "\n",
			expectedToken:    tokenEnvironmentValueConstant,
			expectedFound:    true,
		},
		{
			name:          tokenFromFileCaseNameConstant,
			fileContent:   "GITHUB_TOKEN=" + tokenFileValueConstant + "\n",
			expectedToken: tokenFileValueConstant,
			expectedFound: true,
		},
		{
			name:          tokenMissingCaseNameConstant,
			fileContent:   "OTHER_KEY=value\n",
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Setenv(envfile.EnvGitHubCLIToken, "")
			testInstance.Setenv(envfile.EnvGitHubAPIToken, "")
			testInstance.Setenv(envfile.EnvGitHubToken, testCase.environmentToken)

			filePath := writeEnvFile(testInstance, testCase.fileContent)

			resolvedToken, tokenFound := envfile.ResolveToken(filePath)
			require.Equal(testInstance, testCase.expectedFound, tokenFound)
			require.Equal(testInstance, testCase.expectedToken, resolvedToken)
		})
	}
}
