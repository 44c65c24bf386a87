package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/reviews"
)

var (
	queryURL     string
	queryDoctor  int
	queryReviews int
	querySave    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [QUERY]",
	Short: "Look up doctors for a free-text query",
	Long: `Finds listing pages for a query such as "dermatologist in i8 islamabad",
lists the doctors on the best match and shows the chosen doctor's profile
and reviews. Anything not given by flag is asked for interactively.

Examples:
  docscout query "cardiologist in dha lahore"
  docscout query --url https://www.marham.pk/doctors/karachi/gynecologist --doctor 2 --reviews 5 --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			return models.NewScrapeError(models.ErrCodeMissingCredential,
				"GROQ_API_KEY is not set; add it to the environment or a .env file", nil)
		}

		f, err := newFetchers(cfg)
		if err != nil {
			return fmt.Errorf("query: start browser: %w", err)
		}
		defer f.Close()

		opts := queryOpts{URL: queryURL, Doctor: queryDoctor, Reviews: -1, Save: querySave}
		if len(args) == 1 {
			opts.Query = args[0]
		}
		if cmd.Flags().Changed("reviews") {
			opts.Reviews = queryReviews
		}

		s := &session{
			in:     bufio.NewReader(os.Stdin),
			out:    cmd.OutOrStdout(),
			svc:    newLookup(cfg, f),
			outDir: cfg.Query.OutputDir,
		}
		return s.run(cmd.Context(), opts)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryURL, "url", "", "listing URL to use instead of searching")
	queryCmd.Flags().IntVar(&queryDoctor, "doctor", 0, "doctor number to open from the listing")
	queryCmd.Flags().IntVar(&queryReviews, "reviews", 5, "number of reviews to show (0 = none)")
	queryCmd.Flags().BoolVar(&querySave, "save", false, "write the profile and reviews as JSON without asking")
}

// queryOpts are the answers given up front. Reviews < 0 means ask.
type queryOpts struct {
	Query   string
	URL     string
	Doctor  int
	Reviews int
	Save    bool
}

// session is one interactive lookup.
type session struct {
	in     *bufio.Reader
	out    io.Writer
	svc    *lookup.Service
	outDir string
}

func (s *session) run(ctx context.Context, opts queryOpts) error {
	// ── 1. Listing URL ──
	listingURL, err := s.listingURL(ctx, opts)
	if err != nil || listingURL == "" {
		return err
	}

	// ── 2. Doctors on the page ──
	l, err := s.svc.Listing(ctx, listingURL, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nFound %d doctors on %s\n", len(l.Doctors), l.URL)
	for _, d := range l.Doctors {
		printSummary(s.out, d)
	}

	// ── 3. Choice ──
	n := opts.Doctor
	if n == 0 {
		n, err = s.choose(len(l.Doctors))
		if err != nil {
			return err
		}
	}
	if n == 0 {
		fmt.Fprintln(s.out, "Goodbye.")
		return nil
	}
	if n < 0 || n > len(l.Doctors) {
		return models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("doctor %d is not on the list (1-%d)", n, len(l.Doctors)), nil)
	}

	// ── 4. Profile ──
	p := s.svc.Details(ctx, l.Doctors[n-1])
	printProfile(s.out, p)

	// ── 5. Reviews ──
	var rs *models.ReviewSummary
	count := opts.Reviews
	if count < 0 {
		count = 0
		if s.confirm("\nShow patient reviews? (y/n): ") {
			count = reviews.DefaultCount
			if v, err := strconv.Atoi(s.ask(fmt.Sprintf("How many reviews? [%d]: ", reviews.DefaultCount))); err == nil && v > 0 {
				count = v
			}
		}
	}
	if count > 0 {
		rs, err = s.svc.Reviews(ctx, p.ProfileURL, count, true)
		if err != nil {
			return err
		}
		printReviews(s.out, rs)
	}

	// ── 6. Export ──
	if !opts.Save && !s.confirm("\nSave as JSON? (y/n): ") {
		return nil
	}
	return s.save(p, rs)
}

// listingURL resolves the page to list: the --url flag, else the best
// search candidate, else a URL typed by the user. "" means the user quit.
func (s *session) listingURL(ctx context.Context, opts queryOpts) (string, error) {
	if opts.URL != "" {
		if !lookup.ManualURL(opts.URL) {
			return "", models.NewScrapeError(models.ErrCodeInvalidInput, "--url must be a marham.pk link", nil)
		}
		return strings.TrimSpace(opts.URL), nil
	}

	q := opts.Query
	if strings.TrimSpace(q) == "" {
		q = s.ask("Search (e.g. dermatologist in i8 islamabad): ")
	}
	intent, cands, err := s.svc.Search(ctx, q, 0)
	if err != nil && models.CodeOf(err) != models.ErrCodeNoCandidates {
		return "", err
	}
	fmt.Fprintf(s.out, "Specialty: %s  Area: %s  City: %s\n", intent.Specialty, orDash(intent.Area), orDash(intent.City))

	if len(cands) > 0 {
		for i, c := range cands {
			if i == 5 {
				break
			}
			fmt.Fprintf(s.out, "  %d. %s (score %d)\n", i+1, c.URL, c.Score)
		}
		fmt.Fprintf(s.out, "Using %s\n", cands[0].URL)
		return cands[0].URL, nil
	}

	u := s.ask("No listing page found. Paste a marham.pk listing URL (Enter to quit): ")
	if u == "" {
		return "", nil
	}
	if !lookup.ManualURL(u) {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "not a marham.pk link: "+u, nil)
	}
	return u, nil
}

func (s *session) choose(total int) (int, error) {
	a := s.ask(fmt.Sprintf("\nSelect a doctor (1-%d, 0 to exit): ", total))
	if a == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(a)
	if err != nil {
		return 0, models.NewScrapeError(models.ErrCodeInvalidInput, "not a number: "+a, err)
	}
	return n, nil
}

func (s *session) save(p *models.Profile, rs *models.ReviewSummary) error {
	path, err := lookup.Export(s.outDir, "doctor", p.Name, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Saved", path)
	if rs == nil {
		return nil
	}
	path, err = lookup.Export(s.outDir, "reviews", p.Name, rs)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Saved", path)
	return nil
}

// ask prints prompt and returns the trimmed answer. End of input reads as
// an empty answer.
func (s *session) ask(prompt string) string {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

func (s *session) confirm(prompt string) bool {
	switch strings.ToLower(s.ask(prompt)) {
	case "y", "yes":
		return true
	}
	return false
}

func printSummary(w io.Writer, d models.DoctorSummary) {
	fmt.Fprintf(w, "\n%d. %s", d.ID, d.Name)
	if d.PMDCVerified {
		fmt.Fprint(w, " (PMDC verified)")
	}
	fmt.Fprintln(w)
	line(w, "Speciality", d.Specialization)
	line(w, "Qualifications", d.Qualification)
	line(w, "Experience", d.Experience)
	line(w, "Reviews", d.Reviews)
	line(w, "Satisfaction", d.Satisfaction)
	for _, h := range d.Hospitals {
		fmt.Fprintf(w, "   - %s, %s  %s\n", h.Name, orDash(h.City), h.Fee)
	}
}

func printProfile(w io.Writer, p *models.Profile) {
	fmt.Fprintf(w, "\n== %s ==\n", p.Name)
	line(w, "Speciality", p.Specialization)
	line(w, "Qualifications", p.Qualification)
	line(w, "Experience", p.Experience)
	line(w, "Reviews", p.ReviewsCount)
	line(w, "Satisfaction", p.SatisfactionRate)
	line(w, "Rating", p.Rating)
	line(w, "Wait time", p.WaitTime)
	line(w, "Time with patient", p.AvgTimeToPatient)
	line(w, "Phone", p.Phone)
	line(w, "Video fee", p.VideoConsultationFee)
	if len(p.AreasOfInterest) > 0 {
		line(w, "Interests", strings.Join(p.AreasOfInterest, ", "))
	}
	if len(p.Services) > 0 {
		line(w, "Services", strings.Join(p.Services, ", "))
	}
	for _, h := range p.Hospitals {
		fmt.Fprintf(w, "   - %s (%s) %s\n", h.Name, orDash(h.Address), h.Fee)
		for _, t := range h.Timings {
			fmt.Fprintf(w, "       %s: %s\n", t.Day, t.Time)
		}
	}
	for _, t := range p.VideoConsultationTime {
		fmt.Fprintf(w, "   video %s: %s\n", t.Day, t.Time)
	}
	if p.Statement != "" {
		fmt.Fprintf(w, "\n%s\n", p.Statement)
	}
}

func printReviews(w io.Writer, rs *models.ReviewSummary) {
	fmt.Fprintf(w, "\n== %d reviews ==\n", rs.TotalShown)
	for i, r := range rs.Reviews {
		fmt.Fprintf(w, "%d. %s (%s) %s\n   %s\n", i+1, r.PatientName, orDash(r.Date), r.Rating, r.Text)
	}
	fmt.Fprintln(w, "\n"+rs.BasicSummary)
	if rs.LLMSummary != "" {
		fmt.Fprintln(w, rs.LLMSummary)
	}
}

func line(w io.Writer, label, v string) {
	if v != "" {
		fmt.Fprintf(w, "   %s: %s\n", label, v)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
