package runner

import "fmt"

// DiscoveryError indicates a source failed to enumerate cases after retries.
// It is fatal: an incomplete case list would silently under-report coverage.
type DiscoveryError struct {
	Source string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering cases from %s: %v", e.Source, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// AdapterInitError indicates automation setup failed before scheduling, for
// example a configured browser name with no registered adapter. It is fatal.
type AdapterInitError struct {
	Browser string
	Err     error
}

func (e *AdapterInitError) Error() string {
	return fmt.Sprintf("setting up adapter for %s: %v", e.Browser, e.Err)
}

func (e *AdapterInitError) Unwrap() error {
	return e.Err
}
