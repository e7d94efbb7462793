package shrmem64

import (
	"fmt"
	"os"
	"strconv"
)

// ErrorKind identifies which shrmem64 operation failed. The values match the
// RC_SHRMEM64_* return codes of the z/OS C library so that composite
// statuses stay comparable across both implementations.
type ErrorKind uint8

const (
	OK                    ErrorKind = 0
	GetSharedFailed       ErrorKind = 8
	ShareMemObjFailed     ErrorKind = 9
	DetachFailed          ErrorKind = 10
	SingleSysDetachFailed ErrorKind = 11
	AllSysDetachFailed    ErrorKind = 12
	GetCommonFailed       ErrorKind = 13
)

func (k ErrorKind) String() string {
	switch k {
	case OK:
		return "OK"
	case GetSharedFailed:
		return "GETSHARED_FAILED"
	case ShareMemObjFailed:
		return "SHAREMEMOBJ_FAILED"
	case DetachFailed:
		return "DETACH_FAILED"
	case SingleSysDetachFailed:
		return "SINGLE_SYS_DETACH_FAILED"
	case AllSysDetachFailed:
		return "ALL_SYS_DETACH_FAILED"
	case GetCommonFailed:
		return "GETCOMMON_FAILED"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Status is the composite diagnostic reported for a failed request:
//
//	bits 31-24  ErrorKind
//	bits 23-16  IARV64 return code
//	bits 15-0   IARV64 reason code >> 8
//
// The low byte of the reason code does not survive the packing. Use
// Error.RSN when the full value is needed.
type Status uint32

// EncodeStatus packs kind, rc and rsn into a Status.
func EncodeStatus(kind ErrorKind, rc, rsn uint32) Status {
	return Status(uint32(kind)<<24 | rc<<16 | (rsn>>8)&0x0000FFFF)
}

// Kind returns bits 31-24.
func (s Status) Kind() ErrorKind { return ErrorKind(s >> 24) }

// ReturnCode returns bits 23-16.
func (s Status) ReturnCode() uint8 { return uint8(s >> 16) }

// ReasonCode returns bits 15-0, i.e. the reason code shifted right by 8.
func (s Status) ReasonCode() uint16 { return uint16(s) }

func (s Status) String() string {
	return fmt.Sprintf("0x%08X", uint32(s))
}

// ParseStatus parses a composite status given in decimal or 0x-prefixed hex.
func ParseStatus(v string) (Status, error) {
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("shrmem64: invalid status %q: %w", v, err)
	}
	return Status(n), nil
}

// IsFacilitySuccess reports whether an IARV64 return code denotes success.
// IARV64 uses 0 and 4 for success and warning, 8 and above for failure.
func IsFacilitySuccess(rc uint32) bool {
	return rc < 8
}

// Error is returned by every failed Client operation.
type Error struct {
	Kind   ErrorKind
	Status Status
	// RC and RSN are the untruncated IARV64 return and reason codes.
	RC  uint32
	RSN uint32
}

func newError(kind ErrorKind, rc, rsn uint32) *Error {
	return &Error{
		Kind:   kind,
		Status: EncodeStatus(kind, rc, rsn),
		RC:     rc,
		RSN:    rsn,
	}
}

func (e *Error) Error() string {
	if isProductionEnv() {
		return e.sanitizedError()
	}
	return e.detailedError()
}

// detailedError provides full diagnostic context for development
func (e *Error) detailedError() string {
	var what string
	switch e.Kind {
	case GetSharedFailed:
		what = "IARV64 GETSHARED failed - shared memory object could not be allocated"
	case GetCommonFailed:
		what = "IARV64 GETCOMMON failed - common memory object could not be allocated"
	case ShareMemObjFailed:
		what = "IARV64 SHAREMEMOBJ failed - address space could not be given access"
	case DetachFailed:
		what = "IARV64 DETACH (AFFINITY=LOCAL) failed - access could not be removed"
	case SingleSysDetachFailed:
		what = "IARV64 DETACH (MATCH=SINGLE,AFFINITY=SYSTEM) failed - object could not be released"
	case AllSysDetachFailed:
		what = "IARV64 DETACH (MATCH=MOTOKEN,AFFINITY=SYSTEM) failed - objects could not be released"
	default:
		what = fmt.Sprintf("unknown failure kind %d", uint8(e.Kind))
	}
	return fmt.Sprintf("shrmem64: %s (%s) rc=%d rsn=0x%08X status=%s", what, e.Kind, e.RC, e.RSN, e.Status)
}

// sanitizedError provides minimal error information for production
func (e *Error) sanitizedError() string {
	switch e.Kind {
	case GetSharedFailed, GetCommonFailed:
		return fmt.Sprintf("shrmem64: allocation failed (status %s)", e.Status)
	case ShareMemObjFailed:
		return fmt.Sprintf("shrmem64: share failed (status %s)", e.Status)
	case DetachFailed, SingleSysDetachFailed, AllSysDetachFailed:
		return fmt.Sprintf("shrmem64: detach failed (status %s)", e.Status)
	default:
		return fmt.Sprintf("shrmem64: request failed (status %s)", e.Status)
	}
}

// Is matches sentinel errors by kind, so errors.Is(err, ErrDetachFailed)
// holds for any DetachFailed error regardless of its codes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// isProductionEnv checks if we're running in production environment
func isProductionEnv() bool {
	env := os.Getenv("SHRMEM64_ENV")
	if env == "production" || env == "prod" {
		return true
	}

	// Check if debug mode is explicitly disabled
	if debug := os.Getenv("SHRMEM64_DEBUG"); debug != "" {
		if val, err := strconv.ParseBool(debug); err == nil && !val {
			return true
		}
	}

	return false
}

// Sentinel errors for use with errors.Is.
var (
	ErrGetSharedFailed       = &Error{Kind: GetSharedFailed}
	ErrGetCommonFailed       = &Error{Kind: GetCommonFailed}
	ErrShareMemObjFailed     = &Error{Kind: ShareMemObjFailed}
	ErrDetachFailed          = &Error{Kind: DetachFailed}
	ErrSingleSysDetachFailed = &Error{Kind: SingleSysDetachFailed}
	ErrAllSysDetachFailed    = &Error{Kind: AllSysDetachFailed}
)
