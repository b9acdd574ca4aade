package extract

import (
	"fmt"

	"github.com/tsawler/mosaic/format"
)

// UnprocessableError is returned by Open when the bytes cannot be parsed
// under their declared type at all.
type UnprocessableError struct {
	Format   format.Format
	MIMEType string
	Reason   string
	Err      error
}

func (e *UnprocessableError) Error() string {
	msg := fmt.Sprintf("unprocessable %s document", e.MIMEType)
	if e.MIMEType == "" {
		msg = "unprocessable document"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnprocessableError) Unwrap() error {
	return e.Err
}

// RegionExtractionError reports a page or region that could not be read.
// Region is -1 when the whole page failed.
type RegionExtractionError struct {
	Page   int
	Region int
	Reason string
	Err    error
}

func (e *RegionExtractionError) Error() string {
	where := fmt.Sprintf("page %d", e.Page)
	if e.Region >= 0 {
		where += fmt.Sprintf(" region %d", e.Region)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

func (e *RegionExtractionError) Unwrap() error {
	return e.Err
}
