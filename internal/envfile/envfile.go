package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	commentPrefixConstant            = "#"
	exportPrefixConstant             = "export "
	assignmentSeparatorConstant      = "="
	assignmentPartCountConstant      = 2
	fileReadErrorTemplateConstant    = "unable to read environment file: %w"
	doubleQuoteDelimiterConstant     = `"`
	singleQuoteDelimiterConstant     = "'"
	minimumQuotedValueLengthConstant = 2
)

// Parse reads a KEY=VALUE file into a map.
//
// Blank lines and lines starting with '#' are ignored, an optional leading
// "export " is stripped, surrounding quotes are removed, and later assignments
// for a key replace earlier ones.
func Parse(filePath string) (map[string]string, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return nil, fmt.Errorf(fileReadErrorTemplateConstant, openError)
	}
	defer fileHandle.Close()

	parsedValues := map[string]string{}
	lineScanner := bufio.NewScanner(fileHandle)
	for lineScanner.Scan() {
		trimmedLine := strings.TrimSpace(lineScanner.Text())
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentPrefixConstant) {
			continue
		}

		trimmedLine = strings.TrimPrefix(trimmedLine, exportPrefixConstant)
		assignmentParts := strings.SplitN(trimmedLine, assignmentSeparatorConstant, assignmentPartCountConstant)
		if len(assignmentParts) != assignmentPartCountConstant {
			continue
		}

		assignmentKey := strings.TrimSpace(assignmentParts[0])
		if len(assignmentKey) == 0 {
			continue
		}

		parsedValues[assignmentKey] = unquoteValue(strings.TrimSpace(assignmentParts[1]))
	}

	if scanError := lineScanner.Err(); scanError != nil {
		return nil, fmt.Errorf(fileReadErrorTemplateConstant, scanError)
	}

	return parsedValues, nil
}

func unquoteValue(assignmentValue string) string {
	if len(assignmentValue) < minimumQuotedValueLengthConstant {
		return assignmentValue
	}
	for _, quoteDelimiter := range []string{doubleQuoteDelimiterConstant, singleQuoteDelimiterConstant} {
		if strings.HasPrefix(assignmentValue, quoteDelimiter) && strings.HasSuffix(assignmentValue, quoteDelimiter) {
			return strings.TrimSuffix(strings.TrimPrefix(assignmentValue, quoteDelimiter), quoteDelimiter)
		}
	}
	return assignmentValue
}
