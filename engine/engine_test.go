package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name  string
	html  string
	err   error
	calls atomic.Int32
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Fetch(_ context.Context, req *FetchRequest) (*FetchResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &FetchResult{HTML: f.html, FinalURL: req.URL, StatusCode: 200, EngineName: f.name}, nil
}

func TestDispatcher_EscalatesOnFailure(t *testing.T) {
	httpEng := &fakeEngine{name: "http", err: errors.New("blocked")}
	rodEng := &fakeEngine{name: "rod", html: "<html>ok</html>"}
	mem := NewDomainMemory(time.Hour)

	d := NewDispatcher([]Engine{httpEng, rodEng}, []time.Duration{0, 10 * time.Millisecond}, mem)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://www.marham.pk/doctors"})
	require.NoError(t, err)
	assert.Equal(t, "rod", res.EngineName)
	assert.Equal(t, "rod", mem.Get("www.marham.pk"))

	// Remembered engine is used directly on the next fetch.
	_, err = d.Dispatch(context.Background(), &FetchRequest{URL: "https://www.marham.pk/doctors/lahore"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), httpEng.calls.Load())
	assert.Equal(t, int32(2), rodEng.calls.Load())
}

func TestDispatcher_AllFail(t *testing.T) {
	d := NewDispatcher([]Engine{
		&fakeEngine{name: "http", err: errors.New("a")},
		&fakeEngine{name: "rod", err: errors.New("b")},
	}, nil, nil)
	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://example.com"})
	assert.Error(t, err)
}

func TestDispatcher_Only(t *testing.T) {
	rodEng := &fakeEngine{name: "rod", html: "x"}
	d := NewDispatcher([]Engine{&fakeEngine{name: "http"}, rodEng}, nil, nil)

	res, err := d.Only(context.Background(), "rod", &FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "rod", res.EngineName)
	assert.True(t, d.Has("http"))

	_, err = d.Only(context.Background(), "chromedp", &FetchRequest{URL: "https://example.com"})
	assert.Error(t, err)
}

func TestDomainMemory_Nil(t *testing.T) {
	var dm *DomainMemory
	dm.Set("a", "rod")
	assert.Empty(t, dm.Get("a"))
	dm.Delete("a")
	assert.Zero(t, dm.Len())
}

func TestDomainMemory_Expires(t *testing.T) {
	dm := NewDomainMemory(20 * time.Millisecond)
	dm.Set("www.marham.pk", "rod-stealth")
	assert.Equal(t, "rod-stealth", dm.Get("www.marham.pk"))

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, dm.Get("www.marham.pk"))

	dm.Set("www.marham.pk", "http")
	dm.Delete("www.marham.pk")
	assert.Empty(t, dm.Get("www.marham.pk"))
}

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   BlockType
	}{
		{"cloudflare header", 403, http.Header{"Cf-Ray": {"abc"}}, "denied", BlockCloudflare},
		{"challenge title", 200, nil, "<html><title>Just a moment...</title></html>", BlockCloudflare},
		{"small captcha page", 200, nil, "<html>please solve the captcha</html>", BlockCaptcha},
		{"large page with recaptcha", 200, nil, "<html>" + strings.Repeat("doctor ", 4000) + "g-recaptcha</html>", BlockNone},
		{"meta refresh shell", 200, nil, `<meta http-equiv="refresh" content="0">`, BlockJSShell},
		{"normal", 200, nil, "<html><h3>Dr. A</h3></html>", BlockNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tc.status, Header: tc.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			blocked, kind := DetectBlock(resp, tc.body)
			assert.Equal(t, tc.want, kind)
			assert.Equal(t, tc.want != BlockNone, blocked)
		})
	}
}

func TestHTTPEngine_Fetch(t *testing.T) {
	var gotUA, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title> Doctors </title></head><body>ok</body></html>"))
	}))
	defer srv.Close()

	e := newHTTPEngine(srv.Client(), 5*time.Second)
	res, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL, Headers: map[string]string{"X-Test": "1"}})
	require.NoError(t, err)
	assert.Equal(t, "Doctors", res.Title)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "http", res.EngineName)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "1", gotCustom)
}

func TestHTTPEngine_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Attention Required"))
	}))
	defer srv.Close()

	e := newHTTPEngine(srv.Client(), 5*time.Second)
	_, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BlockCloudflare, be.Kind)
}

func TestRodEngine_ForcesStealth(t *testing.T) {
	var sawStealth bool
	e := NewRodEngine(func(_ context.Context, req *FetchRequest) (*FetchResult, error) {
		sawStealth = req.Stealth
		return &FetchResult{HTML: "<html>ok</html>"}, nil
	}, true)

	res, err := e.Fetch(context.Background(), &FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.True(t, sawStealth)
	assert.Equal(t, "rod-stealth", res.EngineName)
}

func TestRodEngine_ChallengeIsLoss(t *testing.T) {
	e := NewRodEngine(func(context.Context, *FetchRequest) (*FetchResult, error) {
		return &FetchResult{HTML: "<title>Just a moment...</title>", StatusCode: 200}, nil
	}, false)

	_, err := e.Fetch(context.Background(), &FetchRequest{URL: "https://www.marham.pk/doctors"})
	var be *BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "rod", e.Name())

	_, err = NewRodEngine(nil, false).Fetch(context.Background(), &FetchRequest{URL: "x"})
	assert.Error(t, err)
}
