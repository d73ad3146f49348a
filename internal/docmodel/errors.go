package docmodel

import "errors"

// Builder-related errors. ErrFormat means the input is not a recognized
// container at all; ErrCorruptInput means the container was recognized but is
// internally unreadable (truncated archive, malformed XML, broken stream).
// Both are fatal for the document being processed.
var (
	ErrFormat       = errors.New("docmodel: unrecognized input format")
	ErrCorruptInput = errors.New("docmodel: recognized but corrupt input")
)
