package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *SearchError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *SearchError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ConnectorInvalid reports a connector description that cannot be mounted,
// such as one without a display name.
func ConnectorInvalid(reason string) *SearchError {
	return New(ErrCodeConnectorInvalid, fmt.Sprintf("invalid connector: %s", reason))
}

// UnknownWidget reports a widget type or id that is not registered.
func UnknownWidget(name string) *SearchError {
	return New(ErrCodeUnknownWidget, fmt.Sprintf("unknown widget '%s'", name)).
		WithDetail("widget", name)
}

// ParameterNotFound reports a query parameter that was never a recognized
// attribute of the search parameters.
func ParameterNotFound(name string) *SearchError {
	return New(ErrCodeParameterNotFound,
		fmt.Sprintf("parameter '%s' is not an attribute of the search parameters", name)).
		WithDetail("parameter", name)
}

// MissingResults reports that no results exist yet for an index.
func MissingResults(index string) *SearchError {
	return New(ErrCodeMissingResults, fmt.Sprintf("no results available for index '%s'", index)).
		WithDetail("index", index)
}

// StaleReference reports a refine or cleanup touching an index branch that
// is no longer in the state tree.
func StaleReference(index string) *SearchError {
	return New(ErrCodeStaleReference, fmt.Sprintf("index '%s' is not present in the search state", index)).
		WithDetail("index", index)
}

// SearchFailed wraps an executor failure.
func SearchFailed(index string, err error) *SearchError {
	return Wrap(err, ErrCodeSearchFailed, fmt.Sprintf("search failed for index '%s'", index)).
		WithDetail("index", index)
}

// StateLocked reports that the persisted state file is held by another process.
func StateLocked(path string) *SearchError {
	return New(ErrCodeStateLocked, fmt.Sprintf("state file is locked: %s", path)).
		WithDetail("path", path)
}
