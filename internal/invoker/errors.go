package invoker

import "fmt"

// NotFoundError is returned when no descriptor has the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("API '%s' not found.", e.Name)
}

// UnsupportedMethodError is returned for descriptors whose method is not
// GET, POST or DELETE. The loader accepts any method; calls reject them.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("HTTP method '%s' not supported.", e.Method)
}

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
}

// MissingPathParamError is returned when a path placeholder has no value.
type MissingPathParamError struct {
	Name string
}

func (e *MissingPathParamError) Error() string {
	return fmt.Sprintf("missing path parameter '%s'", e.Name)
}
