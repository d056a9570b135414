// internal/domain/dashboard/errors.go
package dashboard

import "errors"

var (
	// ErrSourceUnavailable is returned when no data source is configured or reachable.
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrAllSectionsFailed is returned when every dashboard section query failed.
	ErrAllSectionsFailed = errors.New("all dashboard sections failed")
	// ErrPartialResult is returned under the strict failure policy when any section failed.
	ErrPartialResult = errors.New("dashboard sections failed")
	// ErrInvalidFilter is returned for malformed date ranges.
	ErrInvalidFilter = errors.New("invalid dashboard filter")
	// ErrViewsUnsupported is returned by sources without materialized views.
	ErrViewsUnsupported = errors.New("materialized views are not supported by this source")
)
