package rdm

import "errors"

var (
	ErrPDLTooLong   = errors.New("rdm: pdl exceeds 231 bytes")
	ErrShortBuffer  = errors.New("rdm: buffer too short")
	ErrNotDiscovery = errors.New("rdm: not a discovery response")
	ErrFormat       = errors.New("rdm: value does not match format")
)
