package backend

// notFoundError signals an unknown training item id (404).
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "training item not found: " + e.id }

// ErrNotFound constructs the error returned for an unknown id.
func ErrNotFound(id string) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates a missing training item.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// invalidRouteError rejects a GPX file that cannot be used for training (422).
type invalidRouteError struct{ msg string }

func (e invalidRouteError) Error() string { return e.msg }

// StatusCode lets the HTTP layer map the error without importing this package's internals.
func (e invalidRouteError) StatusCode() int { return 422 }

// IsInvalidRoute reports whether err rejects the uploaded route.
func IsInvalidRoute(err error) bool {
	_, ok := err.(invalidRouteError)
	return ok
}
