// Package extract turns directory listing markup into doctor cards, hospital
// offers and flat rows.
//
// DOM access is split from field mapping: readCard gathers raw strings from
// a card fragment, BuildCard maps them to a models.Card without touching
// the DOM.
package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/docscout/metric"
	"github.com/use-agent/docscout/models"
)

// Card and offer selectors, compiled once.
var (
	selCard          = cascadia.MustCompile("div.row.shadow-card")
	selName          = cascadia.MustCompile("h3")
	selProfileAnchor = cascadia.MustCompile("a.dr_profile_opened_from_listing, a.text-blue, a.dr_profile_open_frm_listing_btn_vprofile")
	selPictureSource = cascadia.MustCompile("picture source[media*='min-width'], picture source")
	selRoundImg      = cascadia.MustCompile("img.round-img")
	selMetricBlock   = cascadia.MustCompile("div.row > div.col-4, div.col-4")
	selSpecPrimary   = cascadia.MustCompile("p.mb-0.mt-10.text-sm, p.mb-0.text-sm")
	selSpecFallback  = cascadia.MustCompile("div.col-9.col-md-10 p.text-sm")
	selTextSm        = cascadia.MustCompile("p.text-sm")
	selChips         = cascadia.MustCompile("span.chips-highlight, span.chips")
	selOffer         = cascadia.MustCompile("div.product-card, div.card-hospital, div.selectAppointmentOrOc")
	selOfferNote     = cascadia.MustCompile("p.text-sm.text-wrap, p.text-sm, p")
	selNext          = cascadia.MustCompile("a[rel='next'], a.next, li.next a")
)

// videoTypeSentinel is the data-hospitaltype value of video consultations.
const videoTypeSentinel = "2"

// RawCard is the unmapped content of one card fragment.
type RawCard struct {
	Name           string
	ProfileHref    string
	ImageSrcset    string
	ImageSrc       string
	MetricBlocks   [][]string // rendered lines per metric block
	Specialization string     // first specialization-like element, if any
	TextSm         []string   // every short-text element, in order
	Chips          []string
	PMDCVerified   bool
	Offers         []RawOffer
}

// RawOffer is the unmapped content of one hospital sub-card.
type RawOffer struct {
	Name    string
	City    string
	Address string
	Amount  string
	Type    string
	Note    string
}

// Context carries what card mapping needs from the page it came from.
type Context struct {
	PageURL     string // base for relative links
	Host        string // target host; profile links elsewhere are dropped
	DefaultCity string // hospital city when the offer has none
}

// BuildCard maps raw card content to a Card.
func BuildCard(raw RawCard, pc Context) models.Card {
	spec, qual := PickSpecQual(raw.Specialization, raw.TextSm)

	values := make([]string, 0, len(raw.MetricBlocks))
	for _, lines := range raw.MetricBlocks {
		if v := metricValue(lines); v != "" {
			values = append(values, v)
		}
	}
	m := metric.Repair(metric.FromLines(values))

	card := models.Card{
		Name:             collapse(raw.Name),
		ProfileURL:       CanonicalURL(raw.ProfileHref, pc.PageURL, pc.Host),
		ImageURL:         imageURL(raw, pc.PageURL),
		Specialization:   spec,
		Qualification:    qual,
		Experience:       m.Experience,
		SatisfactionRate: m.Satisfaction,
		Reviews:          m.Reviews,
		AreasOfInterest:  JoinChips(raw.Chips),
		PMDCVerified:     raw.PMDCVerified,
		Offers:           make([]models.Offer, 0, len(raw.Offers)),
	}
	for _, ro := range raw.Offers {
		card.Offers = append(card.Offers, BuildOffer(ro, pc.DefaultCity))
	}
	return card
}

// PickSpecQual chooses specialization and qualification. The second short
// text is the qualification; a lone short text counts as the qualification
// only when no specialization element was found.
func PickSpecQual(specialization string, textSm []string) (spec, qual string) {
	spec = collapse(specialization)
	switch {
	case len(textSm) >= 2:
		qual = collapse(textSm[1])
	case len(textSm) == 1 && spec == "":
		qual = collapse(textSm[0])
	}
	return spec, qual
}

// metricValue picks the value line of a metric block: the second line when
// the block has a label line, else the only line.
func metricValue(lines []string) string {
	switch {
	case len(lines) >= 2:
		return lines[1]
	case len(lines) == 1:
		return lines[0]
	}
	return ""
}

// JoinChips joins non-empty interest tags with ", ".
func JoinChips(chips []string) string {
	out := make([]string, 0, len(chips))
	for _, c := range chips {
		if c = collapse(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, ", ")
}

// BuildOffer maps a raw hospital sub-card.
func BuildOffer(ro RawOffer, defaultCity string) models.Offer {
	name := strings.TrimSpace(ro.Name)
	if name == "" {
		name = "Unknown"
	}
	city := strings.TrimSpace(ro.City)
	if city == "" {
		city = defaultCity
	}
	consult := models.ConsultHospital
	if strings.Contains(strings.ToLower(name), "video") || strings.TrimSpace(ro.Type) == videoTypeSentinel {
		consult = models.ConsultVideo
	}
	return models.Offer{
		HospitalName:     name,
		HospitalCity:     city,
		HospitalAddress:  strings.TrimSpace(ro.Address),
		Fee:              strings.TrimSpace(ro.Amount),
		ConsultationType: consult,
		AvailabilityNote: collapse(ro.Note),
	}
}

func imageURL(raw RawCard, base string) string {
	if src := firstSrcsetURL(raw.ImageSrcset); src != "" {
		return ResolveHref(src, base)
	}
	return ResolveHref(raw.ImageSrc, base)
}

// firstSrcsetURL returns the URL of the first srcset candidate.
func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(srcset), ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// readCard gathers raw content from a card fragment.
func readCard(s *goquery.Selection) RawCard {
	raw := RawCard{
		Name:         Text(s.FindMatcher(selName).First()),
		ProfileHref:  attr(s.FindMatcher(selProfileAnchor).First(), "href"),
		ImageSrcset:  attr(s.FindMatcher(selPictureSource).First(), "srcset"),
		ImageSrc:     attr(s.FindMatcher(selRoundImg).First(), "src"),
		PMDCVerified: strings.Contains(s.Text(), "PMDC Verified"),
	}

	s.FindMatcher(selMetricBlock).Each(func(_ int, b *goquery.Selection) {
		if lines := Lines(b); len(lines) > 0 {
			raw.MetricBlocks = append(raw.MetricBlocks, lines)
		}
	})

	spec := s.FindMatcher(selSpecPrimary).First()
	if spec.Length() == 0 {
		spec = s.FindMatcher(selSpecFallback).First()
	}
	raw.Specialization = Text(spec)

	s.FindMatcher(selTextSm).Each(func(_ int, p *goquery.Selection) {
		raw.TextSm = append(raw.TextSm, Text(p))
	})
	s.FindMatcher(selChips).Each(func(_ int, c *goquery.Selection) {
		raw.Chips = append(raw.Chips, Text(c))
	})

	s.FindMatcher(selOffer).Each(func(i int, o *goquery.Selection) {
		ro, err := readOffer(o)
		if err != nil {
			slog.Warn("skipping hospital offer", "card", raw.Name, "index", i, "error", err)
			return
		}
		raw.Offers = append(raw.Offers, ro)
	})
	return raw
}

func readOffer(o *goquery.Selection) (ro RawOffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: offer: %v", r)
		}
	}()
	return RawOffer{
		Name:    attr(o, "data-hospitalname"),
		City:    attr(o, "data-hospitalcity"),
		Address: attr(o, "data-hospitaladdress"),
		Amount:  attr(o, "data-amount"),
		Type:    attr(o, "data-hospitaltype"),
		Note:    Text(o.FindMatcher(selOfferNote).First()),
	}, nil
}

// parseCard reads and maps one card, converting a panic into an error so a
// single malformed card never aborts the page.
func parseCard(s *goquery.Selection, pc Context) (card models.Card, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: card: %v", r)
		}
	}()
	return BuildCard(readCard(s), pc), nil
}
