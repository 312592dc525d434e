package fussballde

import (
	"strconv"
	"strings"
)

// Relay payloads are scraped markup turned into JSON, so the same
// field shows up under different names depending on the page variant.
// Each fixture attribute therefore carries an alias list, checked in
// order.
var (
	dateAliases        = []string{"date", "matchDate", "match_date", "kickoffDate", "datum", "spieldatum"}
	timeAliases        = []string{"time", "matchTime", "match_time", "kickoffTime", "uhrzeit", "anstoss"}
	homeTeamAliases    = []string{"homeTeam", "home_team", "home", "heim", "heimmannschaft"}
	awayTeamAliases    = []string{"awayTeam", "away_team", "away", "gast", "gastmannschaft"}
	locationAliases    = []string{"location", "venue", "ort", "spielstaette", "spielort"}
	competitionAliases = []string{"competition", "league", "wettbewerb", "staffel", "liga"}
	matchdayAliases    = []string{"matchday", "round", "spieltag", "runde"}
	resultAliases      = []string{"result", "score", "ergebnis"}
	sourceURLAliases   = []string{"url", "matchUrl", "match_url", "link", "href"}
)

func stringByAlias(item map[string]any, aliases []string) string {
	for _, alias := range aliases {
		value, ok := item[alias]
		if !ok {
			continue
		}
		if text := strings.TrimSpace(stringValue(value)); text != "" {
			return text
		}
	}
	return ""
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}
