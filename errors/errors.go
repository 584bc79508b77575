package errors

import "fmt"

var (
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrDocumentNotFound = fmt.Errorf("document not found")
	ErrFieldNotArray    = fmt.Errorf("document field is not an array")
	ErrMessageBlocked   = fmt.Errorf("offensive message blocked")
	ErrSummarySync      = fmt.Errorf("summary synchronization failed")
)
