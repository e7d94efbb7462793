//go:build !zos || !cgo

package shrmem64

// NewSystemFacility returns ErrNotSupported without z/OS and cgo.
func NewSystemFacility() (Facility, error) {
	return nil, ErrNotSupported
}

// SystemContext returns ErrNotSupported without z/OS and cgo.
func SystemContext() (ExecutionContext, error) {
	return nil, ErrNotSupported
}
