package discovery

import (
	"sort"
	"strings"

	"github.com/use-agent/docscout/models"
)

// Ranking weights.
const (
	scoreSpecialty = 100
	scoreCity      = 50
	scoreArea      = 200
	scoreAreaPath  = 150
	scoreDepth     = 50

	// fullListingSegments is len(strings.Split(u, "/")) for
	// https://host/doctors/<city>/<specialty>.
	fullListingSegments = 6
)

// Score rates how well a listing URL matches intent.
func Score(u string, intent models.QueryIntent) int {
	lower := strings.ToLower(u)
	score := 0
	if intent.Specialty != "" && strings.Contains(lower, intent.Specialty) {
		score += scoreSpecialty
	}
	if intent.City != "" && strings.Contains(lower, intent.City) {
		score += scoreCity
	}
	if intent.Area != "" && strings.Contains(lower, strings.ReplaceAll(intent.Area, " ", "-")) {
		score += scoreArea
	}
	if strings.Contains(lower, "/area-") {
		score += scoreAreaPath
	}
	if len(strings.Split(lower, "/")) == fullListingSegments {
		score += scoreDepth
	}
	return score
}

// Rank scores urls and sorts them by descending score. Equal scores keep
// discovery order.
func Rank(urls []string, intent models.QueryIntent) []models.Candidate {
	out := make([]models.Candidate, len(urls))
	for i, u := range urls {
		out[i] = models.Candidate{URL: u, Score: Score(u, intent), Order: i}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
