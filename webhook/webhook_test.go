package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_Signed(t *testing.T) {
	var sig string
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sig = r.Header.Get(SignatureHeader)
		assert.Equal(t, "sha256="+Sign("s3cret", body), sig)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	ev := NewEvent(CityCompleted, "run-1", map[string]any{"city": "Lahore", "rows": 12})
	require.NoError(t, Deliver(context.Background(), srv.Client(), srv.URL, "s3cret", ev))

	assert.NotEmpty(t, sig)
	assert.Equal(t, CityCompleted, got.Type)
	assert.Equal(t, "run-1", got.RunID)
}

func TestDeliver_Unsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.Client(), srv.URL, "", NewEvent(RunCompleted, "r", nil)))
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.Client(), srv.URL, "", NewEvent(RunFailed, "r", nil))
	assert.Error(t, err)
}

func TestNotifier_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	n := New(srv.URL, "")
	n.delays = []time.Duration{0, time.Millisecond, time.Millisecond}
	n.Notify(NewEvent(RunCompleted, "r", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n.Wait(ctx)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotifier_Disabled(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	n.Notify(NewEvent(RunCompleted, "r", nil))
	n.Wait(context.Background())

	assert.False(t, New("", "").Enabled())
}
