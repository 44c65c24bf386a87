// Package lookup runs the query-driven pipeline: find listing pages for a
// free-text query, list the doctors on one page, and read a chosen doctor's
// profile and reviews.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/docscout/discovery"
	"github.com/use-agent/docscout/extract"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/profile"
	"github.com/use-agent/docscout/reviews"
)

// DefaultMaxCards caps the doctors listed from one page.
const DefaultMaxCards = 20

var (
	listingOpts = models.FetchOptions{
		WaitSelector:  "div.row.shadow-card",
		Timeout:       30,
		PostLoadDelay: 3000,
		Browser:       true,
	}
	profileOpts = models.FetchOptions{
		Timeout:       30,
		PostLoadDelay: 2000,
		Browser:       true,
	}
)

// Fetcher loads a page. Failures come back as an unsuccessful Page.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, opts models.FetchOptions) *models.Page
}

// Summarizer writes the prose summary of a review list.
type Summarizer interface {
	Summarize(ctx context.Context, rs []models.Review) string
}

// Service is the query pipeline. Summarizer may be nil, in which case
// review lists carry only the basic summary.
type Service struct {
	Finder     *discovery.Finder
	Pages      Fetcher
	Summarizer Summarizer
	MaxCards   int
}

// Listing is one parsed listing page as presented to a user.
type Listing struct {
	URL     string                 `json:"url"`
	Doctors []models.DoctorSummary `json:"doctors"`
	NextURL string                 `json:"next_url,omitempty"`
}

// Search parses query and returns ranked, validated listing candidates.
// quota overrides the finder's candidate quota when positive.
func (s *Service) Search(ctx context.Context, query string, quota int) (models.QueryIntent, []models.Candidate, error) {
	intent := discovery.ParseQuery(query)
	if strings.TrimSpace(query) == "" {
		return intent, nil, models.NewScrapeError(models.ErrCodeInvalidInput, "query cannot be empty", nil)
	}
	slog.Info("searching", "specialty", intent.Specialty, "area", intent.Area, "city", intent.City)

	f := *s.Finder
	if quota > 0 {
		f.Quota = quota
	}
	cands, err := f.Find(ctx, intent)
	if err != nil {
		return intent, nil, err
	}
	return intent, cands, nil
}

// ManualURL reports whether u is acceptable as a hand-entered listing URL.
func ManualURL(u string) bool {
	u = strings.TrimSpace(u)
	return strings.HasPrefix(u, "http") && strings.Contains(u, "marham.pk")
}

// Listing fetches a listing page and returns up to limit doctors, numbered
// from 1. limit <= 0 uses MaxCards.
func (s *Service) Listing(ctx context.Context, url string, limit int) (*Listing, error) {
	if limit <= 0 {
		limit = s.MaxCards
	}
	if limit <= 0 {
		limit = DefaultMaxCards
	}

	page, err := s.fetch(ctx, url, listingOpts)
	if err != nil {
		return nil, err
	}
	lp, err := extract.ParseListing(page.HTML, extract.Context{PageURL: url})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "listing unreadable", err)
	}

	out := &Listing{URL: url, NextURL: lp.NextURL, Doctors: []models.DoctorSummary{}}
	for i, c := range lp.Cards {
		if i == limit {
			break
		}
		out.Doctors = append(out.Doctors, Summarize(i+1, c))
	}
	if len(out.Doctors) == 0 {
		return out, models.NewScrapeError(models.ErrCodeNoDoctors, "no doctors found on the listing page", nil)
	}
	return out, nil
}

// Summarize presents a listing card: hospitals only, fees as "Rs. <fee>".
func Summarize(id int, c models.Card) models.DoctorSummary {
	d := models.DoctorSummary{
		ID:              id,
		Name:            c.Name,
		Specialization:  c.Specialization,
		Qualification:   c.Qualification,
		PMDCVerified:    c.PMDCVerified,
		Reviews:         c.Reviews,
		Experience:      c.Experience,
		Satisfaction:    c.SatisfactionRate,
		ProfileURL:      c.ProfileURL,
		Hospitals:       []models.ListedHospital{},
		AreasOfInterest: []string{},
	}
	for _, o := range c.Offers {
		if o.IsVideo() {
			continue
		}
		h := models.ListedHospital{Name: o.HospitalName, City: o.HospitalCity, Address: o.HospitalAddress}
		if o.Fee != "" {
			h.Fee = "Rs. " + o.Fee
		}
		d.Hospitals = append(d.Hospitals, h)
	}
	for _, a := range strings.Split(c.AreasOfInterest, ",") {
		if a = strings.TrimSpace(a); a != "" {
			d.AreasOfInterest = append(d.AreasOfInterest, a)
		}
	}
	return d
}

// Profile fetches and parses a doctor's profile page.
func (s *Service) Profile(ctx context.Context, url string) (*models.Profile, error) {
	page, err := s.fetch(ctx, url, profileOpts)
	if err != nil {
		return nil, err
	}
	return profile.Parse(page.HTML, url), nil
}

// Details starts from the listing summary d and merges the profile at its
// URL. A profile that cannot be fetched leaves the listing fields alone.
func (s *Service) Details(ctx context.Context, d models.DoctorSummary) *models.Profile {
	base := FromSummary(d)
	p, err := s.Profile(ctx, d.ProfileURL)
	if err != nil {
		slog.Warn("profile fetch failed", "url", d.ProfileURL, "error", err)
		return base
	}
	return Merge(base, p)
}

// FromSummary converts a listing summary into a profile skeleton.
func FromSummary(d models.DoctorSummary) *models.Profile {
	p := &models.Profile{
		ProfileURL:            d.ProfileURL,
		Name:                  d.Name,
		Specialization:        d.Specialization,
		Qualification:         d.Qualification,
		PMDCVerified:          d.PMDCVerified,
		ReviewsCount:          d.Reviews,
		Experience:            d.Experience,
		SatisfactionRate:      d.Satisfaction,
		AreasOfInterest:       d.AreasOfInterest,
		Hospitals:             make([]models.Hospital, 0, len(d.Hospitals)),
		VideoConsultationTime: []models.Timing{},
		Services:              []string{},
	}
	for _, h := range d.Hospitals {
		p.Hospitals = append(p.Hospitals, models.Hospital{
			Name:    h.Name,
			City:    h.City,
			Address: h.Address,
			Fee:     h.Fee,
			Timings: []models.Timing{},
		})
	}
	return p
}

// Merge folds the parsed profile p into base. Profile hospitals replace the
// listing's when the profile has any; every other field only fills blanks.
func Merge(base, p *models.Profile) *models.Profile {
	out := *base
	if len(p.Hospitals) > 0 {
		out.Hospitals = p.Hospitals
	}
	fill(&out.ProfileURL, p.ProfileURL)
	fill(&out.Name, p.Name)
	fill(&out.Specialization, p.Specialization)
	fill(&out.Qualification, p.Qualification)
	fill(&out.ReviewsCount, p.ReviewsCount)
	fill(&out.Experience, p.Experience)
	fill(&out.SatisfactionRate, p.SatisfactionRate)
	fill(&out.WaitTime, p.WaitTime)
	fill(&out.AvgTimeToPatient, p.AvgTimeToPatient)
	fill(&out.Rating, p.Rating)
	fill(&out.Phone, p.Phone)
	fill(&out.VideoConsultationFee, p.VideoConsultationFee)
	fill(&out.Statement, p.Statement)
	if !out.PMDCVerified {
		out.PMDCVerified = p.PMDCVerified
	}
	if len(out.AreasOfInterest) == 0 {
		out.AreasOfInterest = p.AreasOfInterest
	}
	if len(out.Services) == 0 {
		out.Services = p.Services
	}
	if len(out.VideoConsultationTime) == 0 {
		out.VideoConsultationTime = p.VideoConsultationTime
	}
	return &out
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// Reviews fetches the profile at url and returns exactly n reviews with
// their summaries. The LLM summary is skipped when summarize is false or no
// Summarizer is configured.
func (s *Service) Reviews(ctx context.Context, url string, n int, summarize bool) (*models.ReviewSummary, error) {
	page, err := s.fetch(ctx, url, profileOpts)
	if err != nil {
		return nil, err
	}
	rs := reviews.Parse(page.HTML, n)
	out := &models.ReviewSummary{
		DoctorURL:    url,
		TotalShown:   len(rs),
		Reviews:      rs,
		BasicSummary: reviews.BasicSummary(rs),
	}
	if summarize && s.Summarizer != nil {
		out.LLMSummary = s.Summarizer.Summarize(ctx, rs)
	}
	return out, nil
}

func (s *Service) fetch(ctx context.Context, url string, opts models.FetchOptions) (*models.Page, error) {
	start := time.Now()
	page := s.Pages.FetchPage(ctx, url, opts)
	if page == nil || !page.Success {
		msg := "fetch failed"
		if page != nil && page.Error != "" {
			msg = page.Error
		}
		return nil, models.NewScrapeError(models.ErrCodeFetch, fmt.Sprintf("%s: %s", url, msg), nil)
	}
	slog.Debug("page fetched", "url", url, "bytes", len(page.HTML), "elapsed", time.Since(start).Round(time.Millisecond))
	return page, nil
}
