package image

import (
	"context"
	"encoding/json"
	stdimage "image"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newFrame returns a small blank frame.
func newFrame() stdimage.Image {
	return stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
}

// labelsHandler answers with the given labels and records the query threshold.
func labelsHandler(t *testing.T, labels []Label, threshold *string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NotEmpty(t, body)

		if threshold != nil {
			*threshold = r.URL.Query().Get("min_confidence")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(detectResponse{Labels: labels})
	}
}

// TestRemoteService_Verdicts checks label matching against the threshold.
func TestRemoteService_Verdicts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		labels []Label
		want   bool
	}{
		{name: "cat above threshold", labels: []Label{{Name: "Cat", Confidence: 97}}, want: true},
		{name: "cat at threshold", labels: []Label{{Name: "cat", Confidence: 50}}, want: true},
		{name: "cat below threshold", labels: []Label{{Name: "Cat", Confidence: 20}}, want: false},
		{name: "no cat", labels: []Label{{Name: "Person", Confidence: 99}}, want: false},
		{name: "no labels", labels: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var threshold string

			server := httptest.NewServer(labelsHandler(t, tc.labels, &threshold))
			defer server.Close()

			svc := NewRemoteService(server.URL, time.Second)

			got, err := svc.ImageContainsCat(context.Background(), newFrame(), 50)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, "50", threshold)
		})
	}
}

// TestRemoteService_RetriesServerErrors retries 5xx and succeeds on a later attempt.
func TestRemoteService_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	ok := labelsHandler(t, []Label{{Name: "Cat", Confidence: 90}}, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}

		ok(w, r)
	}))
	defer server.Close()

	svc := NewRemoteService(server.URL, time.Second, WithRetries(2), WithInitialInterval(time.Millisecond))

	got, err := svc.ImageContainsCat(context.Background(), newFrame(), 50)
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, int32(2), calls.Load())
}

// TestRemoteService_ClientErrorIsPermanent does not retry 4xx responses.
func TestRemoteService_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewRemoteService(server.URL, time.Second, WithRetries(3), WithInitialInterval(time.Millisecond))

	_, err := svc.ImageContainsCat(context.Background(), newFrame(), 50)
	require.ErrorIs(t, err, errUnexpectedStatus)
	require.Equal(t, int32(1), calls.Load())
}

// TestRemoteService_NilImage rejects nil input without a request.
func TestRemoteService_NilImage(t *testing.T) {
	t.Parallel()

	svc := NewRemoteService("http://127.0.0.1:1", time.Second)

	_, err := svc.ImageContainsCat(context.Background(), nil, 50)
	require.ErrorIs(t, err, ErrImageRequired)
}

// TestFakeService_Reproducible checks seeded fakes agree and nil images are rejected.
func TestFakeService_Reproducible(t *testing.T) {
	t.Parallel()

	a := NewSeededFakeService(42)
	b := NewSeededFakeService(42)

	for range 10 {
		va, err := a.ImageContainsCat(context.Background(), newFrame(), 50)
		require.NoError(t, err)

		vb, err := b.ImageContainsCat(context.Background(), newFrame(), 50)
		require.NoError(t, err)

		require.Equal(t, va, vb)
	}

	_, err := NewFakeService().ImageContainsCat(context.Background(), nil, 50)
	require.ErrorIs(t, err, ErrImageRequired)
}
