package model

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Sanitize returns value with markup cleaned when the field is a string with
// the html format. Any other field or value is returned unchanged.
func (f Field) Sanitize(value any) any {
	if f.Type != FieldTypeString || f.Format != FormatHTML {
		return value
	}
	raw, ok := value.(string)
	if !ok {
		return value
	}
	return SanitizeMarkup(raw)
}

// SanitizeMarkup strips scripts, event handlers and unsafe URLs from
// user-provided markup such as footer or legal notice text.
func SanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(false)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		markupPolicy = policy
	})
	return markupPolicy
}
