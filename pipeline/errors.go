package pipeline

import "fmt"

// DocumentUnprocessableError means no region of any kind could be read from
// the document. It is fatal to the document.
type DocumentUnprocessableError struct {
	DocumentID string
	Err        error
}

func (e *DocumentUnprocessableError) Error() string {
	return fmt.Sprintf("document %s is unprocessable: %v", e.DocumentID, e.Err)
}

func (e *DocumentUnprocessableError) Unwrap() error {
	return e.Err
}
