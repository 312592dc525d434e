package fussballde

import (
	"regexp"
	"strings"
)

var (
	teamIDSegmentRegex = regexp.MustCompile(`/team-id/([A-Za-z0-9]+)`)
	trailingTokenRegex = regexp.MustCompile(`/([A-Za-z0-9]{20,})$`)
)

// ExtractTeamID pulls the provider team identifier out of a public
// profile URL. It first looks for an explicit "/team-id/<id>" path
// segment; older profile links instead end in a long opaque token, so
// a trailing alphanumeric segment of at least 20 characters is
// accepted as a fallback.
func ExtractTeamID(profileURL string) (string, bool) {
	value := strings.TrimSpace(profileURL)
	if value == "" {
		return "", false
	}

	// Query string and fragment never carry the identifier.
	if idx := strings.IndexAny(value, "?#"); idx >= 0 {
		value = value[:idx]
	}
	value = strings.TrimRight(value, "/")

	if match := teamIDSegmentRegex.FindStringSubmatch(value); match != nil {
		return match[1], true
	}

	if match := trailingTokenRegex.FindStringSubmatch(value); match != nil {
		return match[1], true
	}

	return "", false
}
