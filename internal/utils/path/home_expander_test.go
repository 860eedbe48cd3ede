package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/trendloop/trendops/internal/utils/path"
)

const (
	homeDirectoryFixtureConstant       = "/home/ubuntu"
	expandTildeOnlyCaseNameConstant    = "tilde_only"
	expandTildePrefixCaseNameConstant  = "tilde_prefix"
	expandAbsolutePathCaseNameConstant = "absolute_path_untouched"
	expandRelativePathCaseNameConstant = "relative_path_untouched"
	relativeRepositoryPathConstant     = "workspace/TrendLoop-USA"
	absoluteRepositoryPathConstant     = "/srv/trendloop"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{
			name:          expandTildeOnlyCaseNameConstant,
			candidatePath: "~",
			expectedPath:  homeDirectoryFixtureConstant,
		},
		{
			name:          expandTildePrefixCaseNameConstant,
			candidatePath: "~/" + relativeRepositoryPathConstant,
			expectedPath:  filepath.Join(homeDirectoryFixtureConstant, relativeRepositoryPathConstant),
		},
		{
			name:          expandAbsolutePathCaseNameConstant,
			candidatePath: absoluteRepositoryPathConstant,
			expectedPath:  absoluteRepositoryPathConstant,
		},
		{
			name:          expandRelativePathCaseNameConstant,
			candidatePath: relativeRepositoryPathConstant,
			expectedPath:  relativeRepositoryPathConstant,
		},
	}

	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return homeDirectoryFixtureConstant, nil
	})

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, homeExpander.Expand(testCase.candidatePath))
		})
	}
}
