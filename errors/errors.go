package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNotFound         = fmt.Errorf("file not found")
	ErrTimeout          = fmt.Errorf("timed out waiting for file")
	ErrTransportFailure = fmt.Errorf("transport failure")
	ErrOverLimit        = fmt.Errorf("file exceeds transport size limit")
	ErrCleanupFailure   = fmt.Errorf("cleanup failed")
	ErrSplitFailure     = fmt.Errorf("split failed")
	ErrCancelled        = fmt.Errorf("delivery cancelled")
	ErrInvalidChunkSize = fmt.Errorf("chunk size must be positive")
	ErrUnexpectedStatus = fmt.Errorf("unexpected status code")
	ErrInvalidPayload   = fmt.Errorf("invalid event payload")
)
