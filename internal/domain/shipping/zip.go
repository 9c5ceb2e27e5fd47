// internal/domain/shipping/zip.go
package shipping

import (
	"regexp"
	"strings"
)

// MatchesZip reports whether zip satisfies at least one rule in ruleText.
//
// ruleText is newline-separated; blank lines are skipped. Rule kinds are
// detected by content:
//   - "start...end"  range: start <= zip <= end (lexicographic after
//     normalization, which also orders plain numeric codes correctly
//     when widths match)
//   - contains "*"   wildcard, anchored full-string match
//   - otherwise      exact match
//
// Both sides are normalized: lowercased, all whitespace stripped.
//
// Empty/blank ruleText means "no rules", which returns false here; the
// caller (ZoneApplies) is responsible for treating absent rule text as
// "no ZIP constraint" rather than asking this predicate.
func MatchesZip(zip, ruleText string) bool {
	z := normalizeZip(zip)
	if z == "" {
		return false
	}

	for _, raw := range strings.Split(ruleText, "\n") {
		rule := normalizeZip(raw)
		if rule == "" {
			continue
		}

		switch {
		case strings.Contains(rule, "..."):
			if zipInRange(z, rule) {
				return true
			}
		case strings.Contains(rule, "*"):
			if zipMatchesWildcard(z, rule) {
				return true
			}
		default:
			if z == rule {
				return true
			}
		}
	}
	return false
}

func normalizeZip(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func zipInRange(zip, rule string) bool {
	parts := strings.SplitN(rule, "...", 2)
	if len(parts) != 2 {
		return false
	}
	start, end := parts[0], parts[1]
	if start == "" || end == "" {
		return false
	}
	return start <= zip && zip <= end
}

func zipMatchesWildcard(zip, rule string) bool {
	// Escape everything, then turn the escaped "*" back into ".*".
	pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(rule), `\*`, ".*") + "$"
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(zip)
}
