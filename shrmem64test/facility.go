// Package shrmem64test provides an in-memory IARV64 simulator for testing
// code built on shrmem64 without a z/OS system.
package shrmem64test

import (
	"sort"
	"sync"

	shrmem64 "github.com/blacktop/go-shrmem64"
)

// Return and reason codes produced by the simulator. The reason codes use
// the IARV64 xxrrrrxx layout but are not the values z/OS would report.
const (
	RCOK      uint32 = 0
	RCWarning uint32 = 4
	RCError   uint32 = 8

	RSNInvalidSegments uint32 = 0x0A000301
	RSNNotFound        uint32 = 0x0A000C01
	RSNNotOwner        uint32 = 0x0A000802
	RSNNoInterest      uint32 = 0x0A000D02
	RSNCommonNotShared uint32 = 0x0A001101
)

// Origin of the first object handed out by a new Facility.
const Origin shrmem64.MemObj = 0x0000_0200_0000_0000

// Call records one request received by the simulator.
type Call struct {
	Request  shrmem64.Request
	Token    shrmem64.Token
	Obj      shrmem64.MemObj
	Segments uint64
	Key      uint8
	RC       uint32
	RSN      uint32
}

// Result is a scripted IARV64 outcome.
type Result struct {
	RC  uint32
	RSN uint32
}

type object struct {
	token    shrmem64.Token
	common   bool
	key      uint8
	segments uint64
	// local holds the tokens of address spaces that currently have access.
	local map[shrmem64.Token]bool
}

// Facility simulates IARV64 memory objects. It implements shrmem64.Facility
// and is safe for concurrent use.
type Facility struct {
	mu      sync.Mutex
	next    shrmem64.MemObj
	objects map[shrmem64.MemObj]*object
	script  map[shrmem64.Request][]Result
	calls   []Call
}

var _ shrmem64.Facility = (*Facility)(nil)

// NewFacility returns an empty simulator.
func NewFacility() *Facility {
	return &Facility{
		next:    Origin,
		objects: make(map[shrmem64.MemObj]*object),
		script:  make(map[shrmem64.Request][]Result),
	}
}

// FailNext makes the next req return rc and rsn. Results with rc >= 8 have
// no effect on simulated storage; lower codes apply the request normally.
func (f *Facility) FailNext(req shrmem64.Request, rc, rsn uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[req] = append(f.script[req], Result{RC: rc, RSN: rsn})
}

// Calls returns a copy of every request received so far.
func (f *Facility) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Objects returns the origins of all live memory objects in ascending order.
func (f *Facility) Objects() []shrmem64.MemObj {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]shrmem64.MemObj, 0, len(f.objects))
	for obj := range f.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasAccess reports whether token currently has local access to obj.
func (f *Facility) HasAccess(obj shrmem64.MemObj, token shrmem64.Token) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[obj]
	return ok && o.local[token]
}

// Segments returns the size of obj in segments, or 0 if it does not exist.
func (f *Facility) Segments(obj shrmem64.MemObj) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.objects[obj]; ok {
		return o.segments
	}
	return 0
}

// Key returns the normalized storage key obj was allocated with.
func (f *Facility) Key(obj shrmem64.MemObj) (uint8, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.objects[obj]; ok {
		return o.key, true
	}
	return 0, false
}

// scripted pops the next scripted result for req. Caller holds mu.
func (f *Facility) scripted(req shrmem64.Request) (Result, bool) {
	q := f.script[req]
	if len(q) == 0 {
		return Result{}, false
	}
	f.script[req] = q[1:]
	return q[0], true
}

// run applies op unless a failing result is scripted for c.Request, and
// records the call. Caller holds mu.
func (f *Facility) run(c Call, op func() (uint32, uint32)) Call {
	res, ok := f.scripted(c.Request)
	if ok && !shrmem64.IsFacilitySuccess(res.RC) {
		c.RC, c.RSN = res.RC, res.RSN
	} else {
		c.RC, c.RSN = op()
		if ok && shrmem64.IsFacilitySuccess(c.RC) {
			c.RC, c.RSN = res.RC, res.RSN
		}
	}
	f.calls = append(f.calls, c)
	return c
}

func (f *Facility) alloc(segments uint64, token shrmem64.Token, common bool, key uint8) (shrmem64.MemObj, uint32, uint32) {
	if segments == 0 {
		return 0, RCError, RSNInvalidSegments
	}
	obj := f.next
	f.next += shrmem64.MemObj(segments * shrmem64.SegmentSize)
	f.objects[obj] = &object{
		token:    token,
		common:   common,
		key:      key,
		segments: segments,
		local:    map[shrmem64.Token]bool{token: true},
	}
	return obj, RCOK, 0
}

// GetShared implements shrmem64.Facility.
func (f *Facility) GetShared(segments uint64, token shrmem64.Token) (shrmem64.MemObj, uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var obj shrmem64.MemObj
	c := f.run(Call{Request: shrmem64.RequestGetShared, Token: token, Segments: segments}, func() (uint32, uint32) {
		var rc, rsn uint32
		obj, rc, rsn = f.alloc(segments, token, false, 0)
		return rc, rsn
	})
	if !shrmem64.IsFacilitySuccess(c.RC) {
		return 0, c.RC, c.RSN
	}
	f.calls[len(f.calls)-1].Obj = obj
	return obj, c.RC, c.RSN
}

// GetCommon implements shrmem64.Facility.
func (f *Facility) GetCommon(segments uint64, token shrmem64.Token, key uint8) (shrmem64.MemObj, uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var obj shrmem64.MemObj
	c := f.run(Call{Request: shrmem64.RequestGetCommon, Token: token, Segments: segments, Key: key}, func() (uint32, uint32) {
		var rc, rsn uint32
		obj, rc, rsn = f.alloc(segments, token, true, key)
		return rc, rsn
	})
	if !shrmem64.IsFacilitySuccess(c.RC) {
		return 0, c.RC, c.RSN
	}
	f.calls[len(f.calls)-1].Obj = obj
	return obj, c.RC, c.RSN
}

// ShareMemObj implements shrmem64.Facility.
func (f *Facility) ShareMemObj(obj shrmem64.MemObj, token shrmem64.Token) (uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.run(Call{Request: shrmem64.RequestShareMemObj, Token: token, Obj: obj}, func() (uint32, uint32) {
		o, ok := f.objects[obj]
		if !ok {
			return RCError, RSNNotFound
		}
		if o.common {
			return RCError, RSNCommonNotShared
		}
		o.local[token] = true
		return RCOK, 0
	})
	return c.RC, c.RSN
}

// DetachSingle implements shrmem64.Facility.
func (f *Facility) DetachSingle(obj shrmem64.MemObj, token shrmem64.Token, owner bool) (uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req := shrmem64.RequestDetachSingleOwner
	if !owner {
		req = shrmem64.RequestDetachSingleNotOwner
	}
	c := f.run(Call{Request: req, Token: token, Obj: obj}, func() (uint32, uint32) {
		o, ok := f.objects[obj]
		if !ok {
			return RCError, RSNNotFound
		}
		if owner && o.token != token {
			return RCError, RSNNotOwner
		}
		if !o.local[token] {
			return RCError, RSNNoInterest
		}
		delete(o.local, token)
		return RCOK, 0
	})
	return c.RC, c.RSN
}

// DetachByToken implements shrmem64.Facility.
func (f *Facility) DetachByToken(token shrmem64.Token) (uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.run(Call{Request: shrmem64.RequestDetachByToken, Token: token}, func() (uint32, uint32) {
		for _, o := range f.objects {
			delete(o.local, token)
		}
		return RCOK, 0
	})
	return c.RC, c.RSN
}

// RemoveSystemInterest implements shrmem64.Facility.
func (f *Facility) RemoveSystemInterest(obj shrmem64.MemObj, token shrmem64.Token) (uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.run(Call{Request: shrmem64.RequestReleaseSingle, Token: token, Obj: obj}, func() (uint32, uint32) {
		o, ok := f.objects[obj]
		if !ok {
			return RCError, RSNNotFound
		}
		if o.token != token {
			return RCError, RSNNotOwner
		}
		delete(f.objects, obj)
		return RCOK, 0
	})
	return c.RC, c.RSN
}

// RemoveSystemInterestAll implements shrmem64.Facility.
func (f *Facility) RemoveSystemInterestAll(token shrmem64.Token) (uint32, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.run(Call{Request: shrmem64.RequestReleaseAll, Token: token}, func() (uint32, uint32) {
		for obj, o := range f.objects {
			if o.token == token {
				delete(f.objects, obj)
			}
		}
		return RCOK, 0
	})
	return c.RC, c.RSN
}

// Context is a fixed shrmem64.ExecutionContext.
type Context struct {
	ASCB uint32
	ASID uint16
}

// AddressSpace implements shrmem64.ExecutionContext.
func (c Context) AddressSpace() (uint32, uint16) {
	return c.ASCB, c.ASID
}
