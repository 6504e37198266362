package store

import (
	"strings"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// FormatTitle replaces every placeholder in template with viewerName, or
// with the default traveler name when viewerName is empty.
func FormatTitle(template, placeholder, viewerName string) string {
	if placeholder == "" {
		return template
	}
	if viewerName == "" {
		viewerName = types.DefaultViewerName
	}
	return strings.ReplaceAll(template, placeholder, viewerName)
}
