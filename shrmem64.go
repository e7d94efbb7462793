package shrmem64

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a Client. The zero value is valid.
type Options struct {
	// Logger receives a debug record per request. Defaults to discarding.
	Logger *slog.Logger
	// Tracer starts one span per request. Defaults to a no-op tracer.
	Tracer trace.Tracer
	// Meter records request counts and durations. Defaults to a no-op meter.
	Meter metric.Meter
	// Context supplies the calling address space for AddressSpaceToken.
	// Defaults to the system context on z/OS.
	Context ExecutionContext
}

// Client issues memory object requests through a Facility.
//
// A Client keeps no per-object state and may be used from multiple
// goroutines. Serializing conflicting requests against the same object or
// token is up to the caller.
type Client struct {
	facility Facility
	context  ExecutionContext
	logger   *slog.Logger
	tracer   trace.Tracer
	inst     *instruments
}

// New returns a Client backed by the z/OS system facility.
func New(opts Options) (*Client, error) {
	f, err := NewSystemFacility()
	if err != nil {
		return nil, err
	}
	return NewWithFacility(f, opts)
}

// NewWithFacility returns a Client that issues its requests through f.
func NewWithFacility(f Facility, opts Options) (*Client, error) {
	if f == nil {
		return nil, errors.New("shrmem64: facility is nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Context == nil {
		opts.Context = defaultContext()
	}
	inst, err := newInstruments(opts.Meter)
	if err != nil {
		return nil, errors.Wrap(err, "shrmem64: create instruments")
	}
	return &Client{
		facility: f,
		context:  opts.Context,
		logger:   opts.Logger,
		tracer:   tracerOrNoop(opts.Tracer),
		inst:     inst,
	}, nil
}

// AddressSpaceToken returns the token of the calling address space.
func (c *Client) AddressSpaceToken() Token {
	return PackToken(c.context.AddressSpace())
}

// AllocShared allocates a shared memory object of at least size bytes,
// rounded up to whole segments, and associates it with token.
func (c *Client) AllocShared(token Token, size uint64) (MemObj, error) {
	segments := Segments(size)
	var obj MemObj
	err := c.issue(RequestGetShared, GetSharedFailed, func() (uint32, uint32) {
		var rc, rsn uint32
		obj, rc, rsn = c.facility.GetShared(segments, token)
		return rc, rsn
	}, slog.Uint64("token", uint64(token)), slog.Uint64("segments", segments))
	if err != nil {
		return 0, err
	}
	recordAlloc(segments)
	return obj, nil
}

// AllocCommon allocates a common memory object in storage key 0.
func (c *Client) AllocCommon(token Token, size uint64) (MemObj, error) {
	return c.AllocCommonKey(token, size, 0)
}

// AllocCommonKey allocates a common memory object, visible in every address
// space, in the given storage key. token is used as the MOTKN ownership key.
func (c *Client) AllocCommonKey(token Token, size uint64, key Key) (MemObj, error) {
	segments := Segments(size)
	keyByte := NormalizeKey(key)
	var obj MemObj
	err := c.issue(RequestGetCommon, GetCommonFailed, func() (uint32, uint32) {
		var rc, rsn uint32
		obj, rc, rsn = c.facility.GetCommon(segments, token, keyByte)
		return rc, rsn
	}, slog.Uint64("token", uint64(token)), slog.Uint64("segments", segments), slog.Int("key", int(key&0xF)))
	if err != nil {
		return 0, err
	}
	recordAlloc(segments)
	return obj, nil
}

// GrantAccess gives the address space identified by token access to obj.
func (c *Client) GrantAccess(token Token, obj MemObj) error {
	return c.issue(RequestShareMemObj, ShareMemObjFailed, func() (uint32, uint32) {
		return c.facility.ShareMemObj(obj, token)
	}, slog.Uint64("token", uint64(token)), slog.Uint64("memobj", uint64(obj)))
}

// RevokeAccess removes local access to obj as its owner.
func (c *Client) RevokeAccess(token Token, obj MemObj) error {
	return c.RevokeAccessAs(token, obj, true)
}

// RevokeAccessAs removes local access to obj. Owners relinquish the object;
// non-owners only give up the access they were granted.
func (c *Client) RevokeAccessAs(token Token, obj MemObj, owner bool) error {
	req := RequestDetachSingleOwner
	if !owner {
		req = RequestDetachSingleNotOwner
	}
	return c.issue(req, DetachFailed, func() (uint32, uint32) {
		return c.facility.DetachSingle(obj, token, owner)
	}, slog.Uint64("token", uint64(token)), slog.Uint64("memobj", uint64(obj)), slog.Bool("owner", owner))
}

// RevokeAllAccess removes local access to every object associated with token.
func (c *Client) RevokeAllAccess(token Token) error {
	return c.issue(RequestDetachByToken, DetachFailed, func() (uint32, uint32) {
		return c.facility.DetachByToken(token)
	}, slog.Uint64("token", uint64(token)))
}

// Release removes system interest in obj. The object is freed once no
// address space still needs it. Releasing an object twice fails.
func (c *Client) Release(token Token, obj MemObj) error {
	return c.issue(RequestReleaseSingle, SingleSysDetachFailed, func() (uint32, uint32) {
		return c.facility.RemoveSystemInterest(obj, token)
	}, slog.Uint64("token", uint64(token)), slog.Uint64("memobj", uint64(obj)))
}

// ReleaseAll removes system interest in every object associated with token
// with a single request.
func (c *Client) ReleaseAll(token Token) error {
	return c.issue(RequestReleaseAll, AllSysDetachFailed, func() (uint32, uint32) {
		return c.facility.RemoveSystemInterestAll(token)
	}, slog.Uint64("token", uint64(token)))
}

// ErrNotSupported is returned when the system facility is unavailable on the
// running platform.
var ErrNotSupported = errors.New("shrmem64: not supported on this platform")

// AddressSpaceToken returns the token of the calling address space using the
// system execution context.
func AddressSpaceToken() (Token, error) {
	ec, err := SystemContext()
	if err != nil {
		return 0, err
	}
	return PackToken(ec.AddressSpace()), nil
}

type unavailableContext struct{}

func (unavailableContext) AddressSpace() (uint32, uint16) { return 0, 0 }

func defaultContext() ExecutionContext {
	if ec, err := SystemContext(); err == nil {
		return ec
	}
	return unavailableContext{}
}
