package scraper

import "fmt"

// Typed errors for the scraper surface. Callers match them with
// errors.As; every failure is surfaced, never retried internally.

// LifecycleError reports an operation invoked out of order, such as
// retrieving before Start or starting twice.
type LifecycleError struct {
	Op    string
	State string
}

func (e *LifecycleError) Error() string {
	if e.State == stateUnstarted {
		return fmt.Sprintf("cannot %s: scraper not started, call Start first", e.Op)
	}
	return fmt.Sprintf("cannot %s: scraper is %s", e.Op, e.State)
}

// FetchError reports a failed page retrieval: network failure, non-2xx
// status, navigation timeout, or a browser that could not be launched.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.URL == "":
		return fmt.Sprintf("fetch failed: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
