package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so components can be tested
// without caring where their reports end up.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that failed in a way that should be looked at.
	//
	// `id` names the component and method that broke (ex. `walker.fetch-page`), not the
	// specific line. Use lowercase, underscores for large components and dashes for methods
	// of a component. Extra context (urls, skus, the error) goes in params.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not necessarily broken but may be worth a look,
	// like a listing without a sku. Same id rules as ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is dropped outside of verbose mode.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of an event, counts are points in time and
	// should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every report with a namespace, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
