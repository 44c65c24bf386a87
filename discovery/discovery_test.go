package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/models"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		q    string
		want models.QueryIntent
	}{
		{
			q:    "Dermatologist in DHA Lahore",
			want: models.QueryIntent{Specialty: "dermatologist", Area: "dha", City: "lahore"},
		},
		{
			q:    "cardiologist in gulshan e iqbal karachi",
			want: models.QueryIntent{Specialty: "cardiologist", Area: "gulshan e iqbal", City: "karachi"},
		},
		{
			q:    "dentist in islamabad",
			want: models.QueryIntent{Specialty: "dentist", City: "islamabad"},
		},
		{
			q:    "best gynecologist near me",
			want: models.QueryIntent{Specialty: "best"},
		},
		{
			// first gazetteer match wins even when a later city is named
			q:    "ent specialist in hyderabad karachi road",
			want: models.QueryIntent{Specialty: "ent", City: "karachi", Area: "hyderabad"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.q, func(t *testing.T) {
			got := ParseQuery(tc.q)
			tc.want.Query = tc.q
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseQuery_Empty(t *testing.T) {
	assert.Equal(t, models.QueryIntent{}, ParseQuery(""))
}

func TestDecodeRedirect(t *testing.T) {
	assert.Equal(t, "https://www.marham.pk/doctors/lahore/dermatologist",
		DecodeRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.marham.pk%2Fdoctors%2Flahore%2Fdermatologist&amp;rut=abc"))
	assert.Equal(t, "https://www.marham.pk/doctors", DecodeRedirect("https://www.marham.pk/doctors"))
}

func TestFilterListingURLs(t *testing.T) {
	got := FilterListingURLs([]string{
		"https://www.marham.pk/doctors/lahore/dermatologist?page=2#x",
		"https://www.marham.pk/doctors/lahore/dermatologist/dr-ayesha-khan",
		"https://www.marham.pk/doctors/lahore/prof-dr-x",
		"https://www.marham.pk/doctors/lahore/Dermatologist",
		"https://www.marham.pk/hospitals/lahore",
		"https://example.com/doctors/lahore",
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.marham.pk%2Fdoctors%2Fkarachi%2Fent-specialist",
	})
	assert.Equal(t, []string{
		"https://www.marham.pk/doctors/lahore/dermatologist",
		"https://www.marham.pk/doctors/karachi/ent-specialist",
	}, got)
}

func TestRank_SpecialtyAndAreaFirst(t *testing.T) {
	intent := models.QueryIntent{Specialty: "dermatologist", Area: "dha", City: "lahore"}
	urls := []string{
		"https://www.marham.pk/doctors/lahore",
		"https://www.marham.pk/doctors/lahore/dermatologist",
		"https://www.marham.pk/doctors/lahore/dermatologist/area-dha",
		"https://www.marham.pk/doctors/karachi/dha",
	}
	ranked := Rank(urls, intent)
	require.Len(t, ranked, 4)
	assert.Equal(t, urls[2], ranked[0].URL)
	assert.Equal(t, 100+50+200+150, ranked[0].Score)
	assert.Equal(t, 2, ranked[0].Order)
}

func TestRank_StableOnTies(t *testing.T) {
	urls := []string{"https://x.pk/doctors/a", "https://x.pk/doctors/b", "https://x.pk/doctors/c"}
	ranked := Rank(urls, models.QueryIntent{Specialty: "none"})
	for i, c := range ranked {
		assert.Equal(t, urls[i], c.URL)
	}
}

func TestScore_SegmentBonus(t *testing.T) {
	assert.Equal(t, 50, Score("https://www.marham.pk/doctors/lahore/dermatologist", models.QueryIntent{}))
	assert.Equal(t, 0, Score("https://www.marham.pk/doctors/lahore", models.QueryIntent{}))
}

func TestValidate(t *testing.T) {
	intent := models.QueryIntent{Specialty: "dermatologist", City: "lahore"}
	good := &models.Page{Success: true, Text: "Best Dermatologists in Lahore. Dr. Ayesha, MBBS, 12 years experience, 300 reviews"}

	assert.True(t, Validate("https://www.marham.pk/doctors/lahore/dermatologist", good, intent))
	assert.False(t, Validate("https://www.marham.pk/profile/x", good, intent))
	assert.False(t, Validate("https://www.marham.pk/dr/", good, intent))
	assert.False(t, Validate("https://www.marham.pk/doctors/lahore/dermatologist", &models.Page{Success: false}, intent))

	wrongCity := &models.Page{Success: true, Text: "Dermatologists in Karachi. Dr. A MBBS"}
	assert.False(t, Validate("u", wrongCity, intent))

	fewIndicators := &models.Page{Success: true, Text: "dermatologist lahore doctor"}
	assert.False(t, Validate("u", fewIndicators, intent))

	late := &models.Page{Success: true, Text: "dermatologist lahore dr. mbbs " + strings.Repeat("x", 6000)}
	assert.True(t, Validate("u", late, intent))
	tooLate := &models.Page{Success: true, Text: strings.Repeat("x", 6000) + "dermatologist lahore dr. mbbs"}
	assert.False(t, Validate("u", tooLate, intent))
}

type fakeSearch struct {
	bodies map[string]string
	calls  []string
}

func (f *fakeSearch) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.calls = append(f.calls, req.URL)
	for prefix, body := range f.bodies {
		if strings.HasPrefix(req.URL, prefix) {
			return &engine.FetchResult{HTML: body}, nil
		}
	}
	return nil, errors.New("provider down")
}

func TestSearch_FallsThroughProviders(t *testing.T) {
	f := &fakeSearch{bodies: map[string]string{
		"https://lite.duckduckgo.com": `<a href="https://www.marham.pk/doctors/lahore/dermatologist">x</a>
			<a href="https://www.marham.pk/doctors/lahore/dermatologist/dr-a">y</a>`,
		"https://www.bing.com": `<a href="https://www.marham.pk/doctors/lahore">z</a>`,
	}}

	got := Search(context.Background(), f, DefaultProviders(), "dermatologist in lahore", 8)
	assert.Equal(t, []string{
		"https://www.marham.pk/doctors/lahore/dermatologist",
		"https://www.marham.pk/doctors/lahore",
	}, got)
	require.Len(t, f.calls, 3)
	assert.Equal(t, "https://duckduckgo.com/html/?q=site:marham.pk+dermatologist+in+lahore", f.calls[0])
}

func TestSearch_StopsAtQuota(t *testing.T) {
	f := &fakeSearch{bodies: map[string]string{
		"https://duckduckgo.com": `<a class="result__a" href="https://www.marham.pk/doctors/a">1</a>
			<a class="result__a" href="https://www.marham.pk/doctors/b">2</a>`,
	}}
	got := Search(context.Background(), f, DefaultProviders(), "q", 1)
	assert.Equal(t, []string{"https://www.marham.pk/doctors/a"}, got)
	assert.Len(t, f.calls, 1)
}

type fakePages struct {
	mu    sync.Mutex
	texts map[string]string
	calls int
}

func (f *fakePages) FetchPage(_ context.Context, url string, _ models.FetchOptions) *models.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	text, ok := f.texts[url]
	return &models.Page{URL: url, Success: ok, Text: text}
}

func TestFinder_Find(t *testing.T) {
	search := &fakeSearch{bodies: map[string]string{
		"https://duckduckgo.com": `
			<a href="https://www.marham.pk/doctors/lahore">all</a>
			<a href="https://www.marham.pk/doctors/lahore/dermatologist">derm</a>
			<a href="https://www.marham.pk/doctors/karachi/dermatologist">khi</a>`,
	}}
	pages := &fakePages{texts: map[string]string{
		"https://www.marham.pk/doctors/lahore":               "Doctors in Lahore: dermatologist, dr. x, mbbs",
		"https://www.marham.pk/doctors/lahore/dermatologist": "Dermatologists in Lahore dr. mbbs reviews",
		"https://www.marham.pk/doctors/karachi/dermatologist": "Dermatologists in Karachi dr. mbbs",
	}}

	f := &Finder{HTTP: search, Pages: pages, Quota: 8, Workers: 3}
	got, err := f.Find(context.Background(), ParseQuery("dermatologist in lahore"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://www.marham.pk/doctors/lahore/dermatologist", got[0].URL)
	assert.Equal(t, "https://www.marham.pk/doctors/lahore", got[1].URL)
	assert.Equal(t, 3, pages.calls)
}

func TestFinder_NoCandidates(t *testing.T) {
	f := &Finder{HTTP: &fakeSearch{}, Pages: &fakePages{}}
	_, err := f.Find(context.Background(), ParseQuery("dentist in multan"))
	assert.Equal(t, models.ErrCodeNoCandidates, models.CodeOf(err))
}
