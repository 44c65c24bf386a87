// Package profile reads the detail fields of a doctor's profile page.
//
// Profile markup is inconsistent across doctors, so every field is read by
// an ordered list of strategies; the first strategy that yields a value
// wins. Each field only looks at a bounded prefix of the document.
package profile

import (
	"html"
	"regexp"
	"strings"

	"github.com/use-agent/docscout/models"
)

// Scan windows. The specialty and qualification markup sits near the top of
// the page; the rest of the header block may sit behind large inline scripts.
const (
	headerWindow = 50000
	bodyWindow   = 200000
)

// strategy reports the value of one field, or false when it does not apply.
type strategy func(doc string) (string, bool)

// field is an ordered list of strategies over a bounded document prefix.
type field struct {
	window     int
	strategies []strategy
}

func (f field) read(doc string) string {
	if f.window > 0 && len(doc) > f.window {
		doc = doc[:f.window]
	}
	for _, s := range f.strategies {
		if v, ok := s(doc); ok {
			return v
		}
	}
	return ""
}

// capture is a strategy returning the trimmed first group of re, optionally
// rejecting values with accept.
func capture(re *regexp.Regexp, accept func(string) bool) strategy {
	return func(doc string) (string, bool) {
		m := re.FindStringSubmatch(doc)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		if v == "" || (accept != nil && !accept(v)) {
			return "", false
		}
		return v, true
	}
}

var (
	nameField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`<h1[^>]*class="mb-0"[^>]*>(?:Dr\.\s*|Prof\.\s*|Asst\.\s*Prof\.\s*)?([^<]+)</h1>`), nil),
		capture(regexp.MustCompile(`<h1[^>]*>(?:Dr\.\s*|Prof\.\s*)?([^<]+)</h1>`), nil),
	}}

	specialtyField = field{window: headerWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?i)<strong[^>]*class="text-sm"[^>]*>([^<]+(?:ologist|logist|Specialist|Surgeon|Physician))</strong>`), nil),
		capture(regexp.MustCompile(`(?i)<p[^>]*class="mt-10"[^>]*><strong[^>]*>([^<]+)</strong>`), nil),
	}}

	qualificationField = field{window: headerWindow, strategies: []strategy{
		capture(regexp.MustCompile(`<p[^>]*class="text-sm mb-0"[^>]*>([^<]*(?:MBBS|FCPS|MCPS|MD|MS|FRCS|MRCP)[^<]*)</p>`), isDegree),
		capture(regexp.MustCompile(`<p[^>]*class="text-sm"[^>]*>([^<]*(?:MBBS|FCPS|MCPS|MD|MS)[^<]*)</p>`), isDegree),
	}}

	reviewsField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?i)<i[^>]*fa-thumbs-up[^>]*></i>\s*(\d+)`), nil),
		capture(regexp.MustCompile(`(?i)<h2[^>]*>\s*(\d+)\s+Reviews`), nil),
	}}

	experienceField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?is)<p class="mb-0 text-sm">(?:\d+\s*Yrs?\s+)?Experience</p>\s*<p class="text-bold text-sm">(\d+\s*Yrs?)</p>`), nil),
		capture(regexp.MustCompile(`(?i)(\d+\s*Yrs?)\s+Experience`), nil),
	}}

	waitTimeField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?is)<p[^>]*class="mb-0 text-sm"[^>]*>Wait Time</p>\s*<p[^>]*class="text-bold"[^>]*>([^<]+)</p>`), nil),
	}}

	avgTimeField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?is)<p[^>]*class="mb-0 text-sm"[^>]*>Avg\.\s+Time\s+to\s+Patient</p>\s*<p[^>]*class="text-bold"[^>]*>([^<]+)</p>`), nil),
	}}

	ratingField = field{window: bodyWindow, strategies: []strategy{
		capture(regexp.MustCompile(`(?i)<div[^>]*class="col-2[^"]*text-right[^"]*"[^>]*>(\d+\.?\d*/5)</div>`), nil),
	}}

	pmdcRe = regexp.MustCompile(`(?i)PMDC\s+Verified`)
)

var degrees = []string{"MBBS", "FCPS", "MD", "MS", "MCPS"}

func isDegree(v string) bool {
	u := strings.ToUpper(v)
	for _, d := range degrees {
		if strings.Contains(u, d) {
			return true
		}
	}
	return false
}

// Parse reads every profile field from rawHTML. Fields that cannot be found
// are left empty; Parse never fails.
func Parse(rawHTML, profileURL string) *models.Profile {
	p := &models.Profile{
		ProfileURL:       profileURL,
		Name:             nameField.read(rawHTML),
		Specialization:   specialtyField.read(rawHTML),
		Qualification:    strings.ReplaceAll(qualificationField.read(rawHTML), "&amp;", "&"),
		ReviewsCount:     reviewsField.read(rawHTML),
		Experience:       experienceField.read(rawHTML),
		WaitTime:         waitTimeField.read(rawHTML),
		AvgTimeToPatient: avgTimeField.read(rawHTML),
		Rating:           ratingField.read(rawHTML),
		Phone:            phone(rawHTML),
		Services:         services(rawHTML),
		Statement:        statement(rawHTML),
		AreasOfInterest:  interests(rawHTML),
	}
	p.PMDCVerified = pmdcRe.MatchString(window(rawHTML, bodyWindow))

	hs := hospitals(rawHTML)
	p.Hospitals = hs.list
	p.VideoConsultationFee = hs.videoFee
	p.VideoConsultationTime = hs.videoTimings
	if p.Hospitals == nil {
		p.Hospitals = []models.Hospital{}
	}
	if p.VideoConsultationTime == nil {
		p.VideoConsultationTime = []models.Timing{}
	}
	return p
}

func window(doc string, n int) string {
	if len(doc) > n {
		return doc[:n]
	}
	return doc
}

// ── Extras ──

var (
	telRe      = regexp.MustCompile(`href="tel:(\d{11})"`)
	mobileRe   = regexp.MustCompile(`(0?3\d{2}[- ]?\d{7})`)
	servicesRe = regexp.MustCompile(`(?is)<h2[^>]*>Services</h2>(.*?)</section>`)
	anchorRe   = regexp.MustCompile(`(?is)<a[^>]*>([^<]+)</a>`)
	stmtRe     = regexp.MustCompile(`(?is)<h2[^>]*>Professional Statement[^<]*</h2>\s*<div[^>]*>\s*<p[^>]*>(.*?)</p>`)
	chipRe     = regexp.MustCompile(`<span class="chips-highlight[^"]*"[^>]*>([^<]+)</span>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRe    = regexp.MustCompile(`\s+`)
	digitsRe   = regexp.MustCompile(`\D`)
)

const (
	minStatement = 50
	maxStatement = 500
)

func phone(doc string) string {
	if m := telRe.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	if m := mobileRe.FindStringSubmatch(doc); m != nil {
		if d := digitsRe.ReplaceAllString(m[1], ""); len(d) >= 10 {
			return d
		}
	}
	return ""
}

func services(doc string) []string {
	out := []string{}
	m := servicesRe.FindStringSubmatch(doc)
	if m == nil {
		return out
	}
	for _, a := range anchorRe.FindAllStringSubmatch(m[1], -1) {
		s := strings.TrimSpace(html.UnescapeString(a[1]))
		if len(s) > 3 && !strings.HasPrefix(s, "http") {
			out = append(out, s)
		}
	}
	return out
}

func statement(doc string) string {
	m := stmtRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	s := stripTags(m[1])
	if len(s) <= minStatement {
		return ""
	}
	if r := []rune(s); len(r) > maxStatement {
		s = string(r[:maxStatement])
	}
	return s
}

func interests(doc string) []string {
	out := []string{}
	for _, m := range chipRe.FindAllStringSubmatch(doc, -1) {
		if s := strings.TrimSpace(html.UnescapeString(m[1])); len(s) > 2 {
			out = append(out, s)
		}
	}
	return out
}

// stripTags removes markup, unescapes entities and collapses whitespace.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
