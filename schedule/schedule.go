// Package schedule reads weekly practice timings from doctor profile pages
// and matches them to hospital names taken from listing cards.
package schedule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	selBlock = cascadia.MustCompile("section.p-xy .shadow-card, section.p-xy div.shadow-card")
	selTitle = cascadia.MustCompile("h3")
	selRow   = cascadia.MustCompile("table tr")
	selCell  = cascadia.MustCompile("td")

	tokenRe = regexp.MustCompile(`[a-z0-9]+`)
)

// Entry is one practice location and its joined weekly hours.
type Entry struct {
	Title string
	Hours string // "Monday: 5pm - 8pm; Tuesday: ..."
}

// ProfileSchedule maps practice titles to weekly hours in page order.
// A nil or empty schedule matches nothing.
type ProfileSchedule []Entry

// Lookup returns the hours stored under title, compared exactly.
func (s ProfileSchedule) Lookup(title string) (string, bool) {
	for _, e := range s {
		if e.Title == title {
			return e.Hours, true
		}
	}
	return "", false
}

// ParseProfile extracts the practice schedule blocks from a profile page.
// Blocks without a title or without any complete day row are skipped; a
// repeated title keeps its first position and takes the later hours. It
// returns nil when the page has no usable block.
func ParseProfile(rawHTML string) (ProfileSchedule, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("schedule: parse profile: %w", err)
	}

	var out ProfileSchedule
	doc.FindMatcher(selBlock).Each(func(_ int, b *goquery.Selection) {
		title := text(b.FindMatcher(selTitle).First())
		if title == "" {
			return
		}
		var weekly []string
		b.FindMatcher(selRow).Each(func(_ int, tr *goquery.Selection) {
			cols := tr.FindMatcher(selCell)
			if cols.Length() < 2 {
				return
			}
			day, hours := text(cols.Eq(0)), text(cols.Eq(1))
			if day != "" && hours != "" {
				weekly = append(weekly, day+": "+hours)
			}
		})
		if len(weekly) == 0 {
			return
		}
		out = out.set(title, strings.Join(weekly, "; "))
	})
	return out, nil
}

func (s ProfileSchedule) set(title, hours string) ProfileSchedule {
	for i := range s {
		if s[i].Title == title {
			s[i].Hours = hours
			return s
		}
	}
	return append(s, Entry{Title: title, Hours: hours})
}

// Match returns the schedule of the practice best matching hospital:
//
//  1. a title equal to hospital, ignoring case;
//  2. a title containing hospital or contained in it;
//  3. the title sharing the most lowercase alphanumeric tokens with
//     hospital, first seen on ties.
//
// A best token overlap of zero is no match.
func Match(hospital string, s ProfileSchedule) (string, bool) {
	if len(s) == 0 || strings.TrimSpace(hospital) == "" {
		return "", false
	}
	name := strings.ToLower(hospital)

	for _, e := range s {
		if strings.ToLower(e.Title) == name {
			return e.Hours, true
		}
	}
	for _, e := range s {
		t := strings.ToLower(e.Title)
		if strings.Contains(t, name) || strings.Contains(name, t) {
			return e.Hours, true
		}
	}

	want := tokens(name)
	best, bestScore := -1, 0
	for i, e := range s {
		score := 0
		for tok := range tokens(strings.ToLower(e.Title)) {
			if _, ok := want[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return s[best].Hours, true
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenRe.FindAllString(s, -1) {
		set[t] = struct{}{}
	}
	return set
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
