package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"tokenark/internal/services"
)

// segmentStripPattern removes everything outside the safe filename alphabet.
var segmentStripPattern = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SafeSegment validates and sanitizes an untrusted string for use as a
// filename component. Separators and traversal sequences are rejected
// outright rather than silently sanitized; other unsafe characters are
// stripped. This is the only place untrusted strings become path segments.
func SafeSegment(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "manifest", "safe segment", "empty value", nil)
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", services.Wrap(services.ErrValidation, "manifest", "safe segment",
			fmt.Sprintf("%q contains path separators or traversal sequences", value), nil)
	}
	cleaned := segmentStripPattern.ReplaceAllString(trimmed, "")
	if cleaned == "" {
		return "", services.Wrap(services.ErrValidation, "manifest", "safe segment",
			fmt.Sprintf("%q has no filesystem-safe characters", value), nil)
	}
	return cleaned, nil
}

// canonicalName returns the canonical manifest filename for a sanitized
// (chain, wallet) pair.
func canonicalName(chainSeg, walletSeg string) string {
	return fmt.Sprintf("manifest.%s.%s.json", chainSeg, walletSeg)
}
