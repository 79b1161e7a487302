package models

import "strings"

// countryAliases maps ISO country codes to name spellings seen in the
// "derived" geo fields of upstream responses. Those fields are themselves
// heuristic, so matching is best-effort substring matching, not authoritative.
var countryAliases = map[string][]string{
	"de": {"germany", "deutschland"},
	"at": {"austria", "österreich", "oesterreich"},
	"ch": {"switzerland", "schweiz", "suisse"},
	"us": {"united states", "usa", "u.s."},
	"gb": {"united kingdom", "great britain", "england", "uk"},
	"fr": {"france"},
	"es": {"spain", "españa", "espana"},
	"it": {"italy", "italia"},
	"nl": {"netherlands", "nederland", "holland"},
	"pl": {"poland", "polska"},
}

// MatchesCountry reports whether any derived country name matches the
// requested ISO code. An unknown code matches everything rather than
// filtering all results away.
func MatchesCountry(code string, derived []string) bool {
	aliases, ok := countryAliases[strings.ToLower(code)]
	if !ok {
		return true
	}

	for _, name := range derived {
		lowered := strings.ToLower(name)
		for _, alias := range aliases {
			if strings.Contains(lowered, alias) {
				return true
			}
		}
	}
	return false
}
