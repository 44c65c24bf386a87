// Package reviews reads patient reviews from a doctor's profile page.
package reviews

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/docscout/models"
)

// DefaultCount is the number of reviews returned when none is requested.
const DefaultCount = 5

// minText is the shortest paragraph taken as a review comment.
const minText = 15

// Review containers, tried in order.
var containers = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<section[^>]*id="reviews-scroll"[^>]*>(.*?)</section>`),
	regexp.MustCompile(`(?is)<div[^>]*id="reviews"[^>]*>(.*?)</div>\s*</section>`),
	regexp.MustCompile(`(?is)<h2[^>]*>\s*\d+\s+Reviews[^<]*</h2>(.*?)(?:<hr|</section>|$)`),
}

var (
	cardStartRe = regexp.MustCompile(`(?i)<div[^>]*class="[^"]*row\s+border-card[^"]*"[^>]*>`)
	ruleRe      = regexp.MustCompile(`<hr[^>]*class="mt-10 mb-10"[^>]*>`)
	dashRe      = regexp.MustCompile(`\s*[-–—]\s*`)

	selAuthor = cascadia.MustCompile("span.text-bold.text-sm.text-grey")
	selPara   = cascadia.MustCompile("p")
	selChip   = cascadia.MustCompile("ul.chips-list li")
)

// Boilerplate that leaks into review blocks from the page footer and bio.
var excluded = []string{
	"copyright", "marham inc", "calling marham", "terms", "privacy",
	"what is dr", "has the following degrees", "all rights reserved",
}

// Parse returns exactly n reviews from the profile page. Blocks that turn
// out to be boilerplate are dropped; the list is padded with placeholder
// reviews when the page has fewer than n. n <= 0 uses DefaultCount.
func Parse(rawHTML string, n int) []models.Review {
	if n <= 0 {
		n = DefaultCount
	}
	out := make([]models.Review, 0, n)

	blocks := split(container(rawHTML))
	if len(blocks) > n {
		blocks = blocks[:n]
	}
	for _, b := range blocks {
		r, err := parseBlock(b)
		if err != nil {
			slog.Warn("review block skipped", "error", err)
			continue
		}
		if !valid(r) {
			continue
		}
		out = append(out, r)
	}

	for len(out) < n {
		out = append(out, models.PlaceholderReview())
	}
	return out
}

// container returns the markup of the first matching reviews container.
func container(doc string) string {
	for _, re := range containers {
		if m := re.FindStringSubmatch(doc); m != nil {
			return m[1]
		}
	}
	return ""
}

// split cuts the container into one fragment per review. Card-style layouts
// are cut at every card start; older layouts are cut at the horizontal
// rules, keeping only fragments that look like a review.
func split(section string) []string {
	if section == "" {
		return nil
	}
	if starts := cardStartRe.FindAllStringIndex(section, -1); len(starts) > 0 {
		blocks := make([]string, 0, len(starts))
		for i, loc := range starts {
			end := len(section)
			if i+1 < len(starts) {
				end = starts[i+1][0]
			}
			blocks = append(blocks, section[loc[0]:end])
		}
		return blocks
	}

	var blocks []string
	for _, part := range ruleRe.Split(section, -1) {
		if strings.Contains(part, "fa-thumbs-up") ||
			strings.Contains(part, "chips-list") ||
			strings.Contains(part, "border-card") {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

func parseBlock(block string) (models.Review, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(block))
	if err != nil {
		return models.Review{}, fmt.Errorf("reviews: parse block: %w", err)
	}

	r := models.Review{
		PatientName: models.AnonymousReviewer,
		Rating:      models.RatingUnavailable,
		Tags:        []string{},
	}

	if author := clean(doc.FindMatcher(selAuthor).First().Text()); author != "" {
		if parts := dashRe.Split(author, 2); len(parts) == 2 {
			r.PatientName = strings.TrimSpace(parts[0])
			r.Date = strings.TrimSpace(parts[1])
		} else {
			r.PatientName = author
		}
	}

	var paras []string
	doc.FindMatcher(selPara).Each(func(_ int, p *goquery.Selection) {
		paras = append(paras, clean(p.Text()))
	})
	r.Text = comment(paras)

	doc.FindMatcher(selChip).Each(func(_ int, li *goquery.Selection) {
		if t := clean(li.Text()); t != "" {
			r.Tags = append(r.Tags, t)
		}
	})
	return r, nil
}

// comment picks the first substantial paragraph that is not the stock
// "I am satisfied" line, falling back to the longest paragraph.
func comment(paras []string) string {
	for _, p := range paras {
		if utf8.RuneCountInString(p) < minText || strings.Contains(strings.ToLower(p), "i am satisfied") {
			continue
		}
		return p
	}
	longest := ""
	for _, p := range paras {
		if utf8.RuneCountInString(p) > utf8.RuneCountInString(longest) {
			longest = p
		}
	}
	if longest == "" {
		return models.ReviewUnavailable
	}
	return longest
}

func valid(r models.Review) bool {
	t := strings.TrimSpace(r.Text)
	if utf8.RuneCountInString(t) < minText {
		return false
	}
	lower := strings.ToLower(t)
	for _, kw := range excluded {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// BasicSummary describes reviews without an LLM: the count shown and, when
// any review carries a numeric rating, their average.
func BasicSummary(reviews []models.Review) string {
	if len(reviews) == 0 {
		return models.NoReviewsAvailable
	}
	var sum float64
	var rated int
	for _, r := range reviews {
		if r.Rating == "" || r.Rating == models.RatingUnavailable {
			continue
		}
		v, err := strconv.ParseFloat(r.Rating, 64)
		if err != nil {
			continue
		}
		sum += v
		rated++
	}
	if rated > 0 {
		return fmt.Sprintf("Showing %d reviews with average rating: %.1f/5", len(reviews), sum/float64(rated))
	}
	return fmt.Sprintf("Showing %d reviews", len(reviews))
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
