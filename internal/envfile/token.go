package envfile

import (
	"os"
	"strings"
)

// Environment variable names used when resolving the repository access token.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the first non-empty access token observed in the
// process environment or in the environment file at filePath.
//
// A missing token is reported through the boolean result; it is never an
// error because unattended runs treat absent credentials as a skip condition.
func ResolveToken(filePath string) (string, bool) {
	for _, environmentKey := range tokenPreference {
		if environmentValue, valueExists := os.LookupEnv(environmentKey); valueExists {
			trimmedValue := strings.TrimSpace(environmentValue)
			if len(trimmedValue) > 0 {
				return trimmedValue, true
			}
		}
	}

	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return "", false
	}

	fileValues, parseError := Parse(trimmedFilePath)
	if parseError != nil {
		return "", false
	}

	for _, environmentKey := range tokenPreference {
		trimmedValue := strings.TrimSpace(fileValues[environmentKey])
		if len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}

	return "", false
}
