package runner

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pixelgate/pixelgate/internal/source"
)

// RetryPolicy bounds the discovery retry loop. It is scoped to the discovery
// boundary only; item-level capture failures are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultRetryPolicy absorbs a dev server that is still compiling when the
// run starts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Factor:      2,
	}
}

// Discover starts every source and lists its cases, retrying per source with
// increasing delay. Case URLs are resolved against the source's base URL.
// Exhausting retries on any source fails the whole run: an incomplete case
// list would silently under-report coverage.
func Discover(ctx context.Context, log logrus.FieldLogger, sources []source.Source, policy RetryPolicy) ([]source.CaseMeta, error) {
	log = log.WithField("component", "discovery")

	perSource := make([][]source.CaseMeta, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		i, s := i, s
		g.Go(func() error {
			cases, err := discoverSource(gctx, log, s, policy)
			if err != nil {
				return err
			}

			perSource[i] = cases

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []source.CaseMeta
	for _, cases := range perSource {
		all = append(all, cases...)
	}

	log.WithFields(logrus.Fields{
		"sources": len(sources),
		"cases":   len(all),
	}).Info("discovery complete")

	return all, nil
}

func discoverSource(ctx context.Context, log logrus.FieldLogger, s source.Source, policy RetryPolicy) ([]source.CaseMeta, error) {
	logCtx := log.WithField("source", s.Name())

	var lastErr error

	delay := policy.BaseDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			logCtx.WithFields(logrus.Fields{
				"attempt": attempt,
				"max":     policy.MaxAttempts,
				"delay":   delay,
			}).Debug("retrying discovery")

			select {
			case <-ctx.Done():
				return nil, &DiscoveryError{Source: s.Name(), Err: ctx.Err()}
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * policy.Factor)
			}
		}

		cases, err := listOnce(ctx, s)
		if err != nil {
			lastErr = err
			logCtx.WithError(err).Debug("discovery attempt failed")

			continue
		}

		logCtx.WithField("cases", len(cases)).Debug("source discovered")

		return cases, nil
	}

	return nil, &DiscoveryError{Source: s.Name(), Err: lastErr}
}

func listOnce(ctx context.Context, s source.Source) ([]source.CaseMeta, error) {
	baseURL, err := s.Start(ctx)
	if err != nil {
		return nil, err
	}

	cases, err := s.ListCases(ctx)
	if err != nil {
		return nil, err
	}

	for i := range cases {
		resolved, err := resolveURL(baseURL, cases[i].URL)
		if err != nil {
			return nil, fmt.Errorf("resolving url for case %s: %w", cases[i].ID, err)
		}
		cases[i].URL = resolved
	}

	return cases, nil
}

// resolveURL makes a case URL absolute against the source's base URL.
// Already-absolute URLs pass through untouched.
func resolveURL(baseURL, caseURL string) (string, error) {
	ref, err := url.Parse(caseURL)
	if err != nil {
		return "", err
	}

	if ref.IsAbs() {
		return caseURL, nil
	}

	if baseURL == "" {
		return "", fmt.Errorf("relative url %q with no base url", caseURL)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	return base.ResolveReference(ref).String(), nil
}
