package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pixelgate/pixelgate/internal/source"
)

type flakySource struct {
	name     string
	baseURL  string
	cases    []source.CaseMeta
	failures int32 // Start fails this many times before succeeding

	startCalls atomic.Int32
	stopCalls  atomic.Int32
}

func (s *flakySource) Name() string { return s.name }

func (s *flakySource) Start(_ context.Context) (string, error) {
	call := s.startCalls.Add(1)
	if call <= s.failures {
		return "", errors.New("connection refused")
	}
	return s.baseURL, nil
}

func (s *flakySource) ListCases(_ context.Context) ([]source.CaseMeta, error) {
	out := make([]source.CaseMeta, len(s.cases))
	copy(out, s.cases)
	return out, nil
}

func (s *flakySource) Stop() error {
	s.stopCalls.Add(1)
	return nil
}

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 2}
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestDiscoverRetriesUntilSourceIsReady(t *testing.T) {
	t.Parallel()

	s := &flakySource{
		name:     "storybook",
		baseURL:  "http://localhost:6006",
		failures: 2,
		cases: []source.CaseMeta{
			{ID: "button", URL: "/iframe.html?id=button"},
		},
	}

	cases, err := Discover(context.Background(), testLogger(), []source.Source{s}, testRetryPolicy())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	require.Equal(t, int32(3), s.startCalls.Load())

	// Relative case URLs come back resolved against the source base URL.
	require.Equal(t, "http://localhost:6006/iframe.html?id=button", cases[0].URL)
}

func TestDiscoverExhaustsRetries(t *testing.T) {
	t.Parallel()

	s := &flakySource{name: "storybook", failures: 99}

	_, err := Discover(context.Background(), testLogger(), []source.Source{s}, testRetryPolicy())
	require.Error(t, err)

	var discoveryErr *DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	require.Equal(t, "storybook", discoveryErr.Source)
	require.Equal(t, int32(3), s.startCalls.Load())
}

func TestDiscoverConcatenatesInSourceOrder(t *testing.T) {
	t.Parallel()

	first := &flakySource{
		name:    "storybook",
		baseURL: "http://localhost:6006",
		cases:   []source.CaseMeta{{ID: "a", URL: "/a"}, {ID: "b", URL: "/b"}},
	}
	second := &flakySource{
		name:    "pages",
		baseURL: "http://localhost:3000",
		cases:   []source.CaseMeta{{ID: "c", URL: "/c"}},
	}

	cases, err := Discover(context.Background(), testLogger(), []source.Source{first, second}, testRetryPolicy())
	require.NoError(t, err)
	require.Len(t, cases, 3)
	require.Equal(t, "a", cases[0].ID)
	require.Equal(t, "b", cases[1].ID)
	require.Equal(t, "c", cases[2].ID)
}

func TestDiscoverStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &flakySource{name: "storybook", failures: 99}

	_, err := Discover(ctx, testLogger(), []source.Source{s}, RetryPolicy{
		MaxAttempts: 10,
		BaseDelay:   time.Hour,
		Factor:      2,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		caseURL  string
		expected string
		wantErr  bool
	}{
		{
			name:     "absolute url passes through",
			baseURL:  "http://localhost:6006",
			caseURL:  "https://example.com/page",
			expected: "https://example.com/page",
		},
		{
			name:     "relative path resolved against base",
			baseURL:  "http://localhost:6006",
			caseURL:  "/iframe.html?id=button--primary",
			expected: "http://localhost:6006/iframe.html?id=button--primary",
		},
		{
			name:     "base with path",
			baseURL:  "http://localhost:3000/app/",
			caseURL:  "settings",
			expected: "http://localhost:3000/app/settings",
		},
		{
			name:    "relative url with no base",
			baseURL: "",
			caseURL: "/page",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolved, err := resolveURL(tt.baseURL, tt.caseURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expected, resolved)
		})
	}
}
