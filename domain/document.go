package domain

import "io"

// Document is one binary payload handed to the transport.
type Document struct {
	FileName    string
	Caption     string
	ContentType string
	Size        int64
	Body        io.Reader
}
