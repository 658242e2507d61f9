package util

import (
	"regexp"
	"strings"
)

var camelCaseRegexp = regexp.MustCompile(`([A-Z])`)

// CamelCaseToDashCase converts a camelCase string to dash-case
func CamelCaseToDashCase(input string) string {
	return camelCaseRegexp.ReplaceAllStringFunc(input, func(match string) string {
		return "-" + strings.ToLower(match)
	})
}
