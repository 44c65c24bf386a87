// Package discovery turns a free-text doctor query into ranked listing URLs
// on the directory: query parsing, search-provider scraping, validation and
// ranking.
package discovery

import (
	"regexp"
	"strings"

	"github.com/use-agent/docscout/models"
)

// Gazetteer is the ordered list of known cities. The first city found as a
// substring of the query wins, even when a later one is more specific.
var Gazetteer = []string{
	"karachi", "lahore", "islamabad", "rawalpindi", "faisalabad", "multan",
	"peshawar", "quetta", "sialkot", "gujranwala", "hyderabad", "bahawalpur",
}

var specialtyRe = regexp.MustCompile(`^([a-z]+(?:ologist|logist|ist)?)\s+in`)

// ParseQuery extracts specialty, area and city from a query such as
// "dermatologist in dha lahore".
func ParseQuery(q string) models.QueryIntent {
	lower := strings.ToLower(strings.TrimSpace(q))
	intent := models.QueryIntent{Query: q}

	for _, c := range Gazetteer {
		if strings.Contains(lower, c) {
			intent.City = c
			break
		}
	}

	if intent.City != "" {
		areaRe := regexp.MustCompile(`\bin\s+([a-z0-9\s-]+?)\s+` + regexp.QuoteMeta(intent.City))
		if m := areaRe.FindStringSubmatch(lower); m != nil {
			intent.Area = strings.TrimSpace(m[1])
		}
	}

	if m := specialtyRe.FindStringSubmatch(lower); m != nil {
		intent.Specialty = m[1]
	} else if words := strings.Fields(lower); len(words) > 0 {
		intent.Specialty = words[0]
	}
	return intent
}
