package shrmem64

import "fmt"

// MemObj is the origin address of a 64-bit memory object.
type MemObj uint64

// Token identifies the address space or user-defined domain a memory object
// is associated with.
type Token uint64

// Request names one IARV64 request issued by a Facility.
type Request int

const (
	RequestGetShared Request = iota
	RequestGetCommon
	RequestShareMemObj
	RequestDetachSingleOwner
	RequestDetachSingleNotOwner
	RequestDetachByToken
	RequestReleaseSingle
	RequestReleaseAll
)

func (r Request) String() string {
	switch r {
	case RequestGetShared:
		return "getshared"
	case RequestGetCommon:
		return "getcommon"
	case RequestShareMemObj:
		return "sharememobj"
	case RequestDetachSingleOwner:
		return "detach_single_owner"
	case RequestDetachSingleNotOwner:
		return "detach_single_not_owner"
	case RequestDetachByToken:
		return "detach_by_token"
	case RequestReleaseSingle:
		return "release_single"
	case RequestReleaseAll:
		return "release_all"
	default:
		return "unknown"
	}
}

// Facility issues IARV64 requests. Every method is one synchronous call and
// returns the raw IARV64 return and reason codes.
//
// SystemFacility is the z/OS implementation. Tests use the simulator in
// package shrmem64test.
type Facility interface {
	// GetShared issues REQUEST=GETSHARED,USERTKN=token.
	GetShared(segments uint64, token Token) (obj MemObj, rc, rsn uint32)
	// GetCommon issues REQUEST=GETCOMMON,MOTKN=token,KEY=key,FPROT=NO.
	// key is already normalized into the high nibble.
	GetCommon(segments uint64, token Token, key uint8) (obj MemObj, rc, rsn uint32)
	// ShareMemObj issues REQUEST=SHAREMEMOBJ for a single range.
	ShareMemObj(obj MemObj, token Token) (rc, rsn uint32)
	// DetachSingle issues REQUEST=DETACH,MATCH=SINGLE,AFFINITY=LOCAL with
	// OWNER=YES or OWNER=NO.
	DetachSingle(obj MemObj, token Token, owner bool) (rc, rsn uint32)
	// DetachByToken issues REQUEST=DETACH,MATCH=MOTOKEN,AFFINITY=LOCAL,OWNER=YES.
	DetachByToken(token Token) (rc, rsn uint32)
	// RemoveSystemInterest issues REQUEST=DETACH,MATCH=SINGLE,AFFINITY=SYSTEM.
	RemoveSystemInterest(obj MemObj, token Token) (rc, rsn uint32)
	// RemoveSystemInterestAll issues REQUEST=DETACH,MATCH=MOTOKEN,AFFINITY=SYSTEM.
	RemoveSystemInterestAll(token Token) (rc, rsn uint32)
}

// ExecutionContext reports the identity of the calling address space.
type ExecutionContext interface {
	// AddressSpace returns the 31-bit ASCB address and the ASID.
	AddressSpace() (ascb uint32, asid uint16)
}

// PackToken builds an address-space token: the ASCB address in the high word
// and the ASID in the low word.
func PackToken(ascb uint32, asid uint16) Token {
	return Token(uint64(ascb)<<32 | uint64(asid))
}

// UnpackToken is the inverse of PackToken.
func UnpackToken(t Token) (ascb uint32, asid uint16) {
	return uint32(t >> 32), uint16(t)
}

// ParseRequest returns the Request whose String form is name.
func ParseRequest(name string) (Request, error) {
	for r := RequestGetShared; r <= RequestReleaseAll; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("shrmem64: unknown request %q", name)
}
