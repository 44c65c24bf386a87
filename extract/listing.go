package extract

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/schedule"
)

var selCityAnchor = cascadia.MustCompile("a[href*='/doctors/']")

// ParseListing extracts every doctor card and the next-page link from a
// listing page. Cards that fail to parse are logged and skipped.
func ParseListing(rawHTML string, pc Context) (*models.ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse listing: %w", err)
	}
	if pc.Host == "" {
		pc.Host = Host(pc.PageURL)
	}

	page := &models.ListingPage{URL: pc.PageURL}
	doc.FindMatcher(selCard).Each(func(i int, s *goquery.Selection) {
		card, err := parseCard(s, pc)
		if err != nil {
			slog.Warn("skipping doctor card", "url", pc.PageURL, "index", i, "error", err)
			return
		}
		page.Cards = append(page.Cards, card)
	})

	doc.FindMatcher(selNext).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if next := ResolveHref(attr(a, "href"), pc.PageURL); next != "" {
			page.NextURL = next
			return false
		}
		return true
	})
	return page, nil
}

// Rows flattens a card into one row per offer. Doctor-level fields repeat on
// every row; a card without offers yields no rows.
func Rows(card models.Card, sched schedule.ProfileSchedule, sourceURL string) []models.Row {
	rows := make([]models.Row, 0, len(card.Offers))
	for _, o := range card.Offers {
		hours, _ := schedule.Match(o.HospitalName, sched)
		rows = append(rows, models.Row{
			City:                 o.HospitalCity,
			Name:                 card.Name,
			Specialization:       card.Specialization,
			Qualification:        card.Qualification,
			Experience:           card.Experience,
			SatisfactionRate:     card.SatisfactionRate,
			Reviews:              card.Reviews,
			AreasOfInterest:      card.AreasOfInterest,
			ConsultationType:     o.ConsultationType,
			HospitalName:         o.HospitalName,
			HospitalAddress:      o.HospitalAddress,
			HospitalCity:         o.HospitalCity,
			CompleteAddress:      o.AvailabilityNote,
			AvailabilitySchedule: hours,
			Fee:                  o.Fee,
			ProfileURL:           card.ProfileURL,
			ImageURL:             card.ImageURL,
			RawSourceURL:         sourceURL,
		})
	}
	return rows
}

// DiscoverCities collects city listing roots from the directory index: links
// whose path is exactly /doctors/<slug> and whose text has no digit. The
// result is deduplicated and sorted by name.
func DiscoverCities(rawHTML, pageURL string) ([]models.City, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse city index: %w", err)
	}

	type key struct{ name, url string }
	seen := make(map[key]struct{})
	var cities []models.City

	doc.FindMatcher(selCityAnchor).Each(func(_ int, a *goquery.Selection) {
		name := Text(a)
		href := ResolveHref(attr(a, "href"), pageURL)
		if name == "" || href == "" || strings.ContainsAny(name, "0123456789") {
			return
		}
		if !isCityPath(href) {
			return
		}
		k := key{name, href}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		cities = append(cities, models.City{Name: name, URL: href})
	})

	sort.SliceStable(cities, func(i, j int) bool {
		li, lj := strings.ToLower(cities[i].Name), strings.ToLower(cities[j].Name)
		if li != lj {
			return li < lj
		}
		return cities[i].URL < cities[j].URL
	})
	return cities, nil
}

// isCityPath reports whether u's path is doctors/<slug> with nothing after.
func isCityPath(u string) bool {
	i := strings.Index(u, "://")
	if i < 0 {
		return false
	}
	rest := u[i+3:]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return false
	}
	path := rest[slash:]
	if q := strings.IndexAny(path, "?#"); q >= 0 {
		path = path[:q]
	}
	path = strings.Trim(path, "/")
	return strings.HasPrefix(path, "doctors/") && strings.Count(path, "/") == 1
}
