package types

import "fmt"

// NetworkError reports a transport level failure talking to the release API.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response from the release API.
type APIError struct {
	Op     string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: status=%d url=%s response=%s", e.Op, e.Status, e.URL, e.Body)
}

// UploadError is an APIError raised while attaching an artifact.
type UploadError struct {
	Tag      string
	Artifact string
	APIError
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to %s failed: status=%d response=%s", e.Artifact, e.Tag, e.Status, e.Body)
}

func (e *UploadError) Unwrap() error {
	return &e.APIError
}
