package shrmem64_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	shrmem64 "github.com/blacktop/go-shrmem64"
	"github.com/blacktop/go-shrmem64/shrmem64test"
)

const (
	tokenA shrmem64.Token = 0x00F8A10000000042
	tokenB shrmem64.Token = 0x00F9B20000000057
)

type ClientTestSuite struct {
	suite.Suite
	facility *shrmem64test.Facility
	client   *shrmem64.Client
}

func (s *ClientTestSuite) SetupTest() {
	s.facility = shrmem64test.NewFacility()
	c, err := shrmem64.NewWithFacility(s.facility, shrmem64.Options{
		Context: shrmem64test.Context{ASCB: 0x00F8A100, ASID: 0x42},
	})
	s.Require().NoError(err)
	s.client = c
}

func (s *ClientTestSuite) TestAddressSpaceToken() {
	s.Equal(tokenA, s.client.AddressSpaceToken())
}

func (s *ClientTestSuite) TestAllocSharedOneByte() {
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	s.Equal(shrmem64test.Origin, obj)

	calls := s.facility.Calls()
	s.Require().Len(calls, 1)
	s.Equal(shrmem64.RequestGetShared, calls[0].Request)
	s.Equal(uint64(1), calls[0].Segments)
	s.Equal(tokenA, calls[0].Token)
	s.True(s.facility.HasAccess(obj, tokenA))
}

func (s *ClientTestSuite) TestAllocSharedRoundsUp() {
	obj, err := s.client.AllocShared(tokenA, 3*shrmem64.SegmentSize+1)
	s.Require().NoError(err)
	s.Equal(uint64(4), s.facility.Segments(obj))

	next, err := s.client.AllocShared(tokenA, shrmem64.SegmentSize)
	s.Require().NoError(err)
	s.Equal(obj+4*shrmem64.SegmentSize, next)
}

func (s *ClientTestSuite) TestAllocSharedFailure() {
	s.facility.FailNext(shrmem64.RequestGetShared, 8, 0x0A000301)

	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().Error(err)
	s.Zero(obj)
	s.ErrorIs(err, shrmem64.ErrGetSharedFailed)

	var e *shrmem64.Error
	s.Require().ErrorAs(err, &e)
	s.Equal(shrmem64.GetSharedFailed, e.Kind)
	s.Equal(uint32(shrmem64.GetSharedFailed), uint32(e.Status)>>24)
	s.Equal(uint32(8), (uint32(e.Status)>>16)&0xFF)
	s.Equal(uint16(0x0003), e.Status.ReasonCode())
	s.Empty(s.facility.Objects())
}

func (s *ClientTestSuite) TestAllocZeroBytesFails() {
	_, err := s.client.AllocShared(tokenA, 0)
	s.Require().ErrorIs(err, shrmem64.ErrGetSharedFailed)

	var e *shrmem64.Error
	s.Require().ErrorAs(err, &e)
	s.Equal(shrmem64test.RSNInvalidSegments, e.RSN)
}

func (s *ClientTestSuite) TestWarningIsSuccess() {
	s.facility.FailNext(shrmem64.RequestGetShared, 4, 0)
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	s.Contains(s.facility.Objects(), obj)
}

func (s *ClientTestSuite) TestAllocCommonKey() {
	obj, err := s.client.AllocCommonKey(tokenA, 2*shrmem64.SegmentSize, 0x1F)
	s.Require().NoError(err)

	key, ok := s.facility.Key(obj)
	s.Require().True(ok)
	s.Equal(uint8(0xF0), key)
	s.Equal(uint64(2), s.facility.Segments(obj))
}

func (s *ClientTestSuite) TestAllocCommonDefaultsToKeyZero() {
	obj, err := s.client.AllocCommon(tokenA, 1)
	s.Require().NoError(err)
	key, ok := s.facility.Key(obj)
	s.Require().True(ok)
	s.Zero(key)
}

func (s *ClientTestSuite) TestAllocCommonFailure() {
	s.facility.FailNext(shrmem64.RequestGetCommon, 12, 0x0A001234)
	_, err := s.client.AllocCommonKey(tokenA, 1, 2)

	var e *shrmem64.Error
	s.Require().ErrorAs(err, &e)
	s.Equal(shrmem64.GetCommonFailed, e.Kind)
	s.Equal(shrmem64.GetCommonFailed, e.Status.Kind())
	s.Equal(uint8(12), e.Status.ReturnCode())
}

func (s *ClientTestSuite) TestGrantAndRevoke() {
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.client.GrantAccess(tokenB, obj))
	s.True(s.facility.HasAccess(obj, tokenB))

	s.Require().NoError(s.client.RevokeAccessAs(tokenB, obj, false))
	s.False(s.facility.HasAccess(obj, tokenB))
	s.Contains(s.facility.Objects(), obj, "non-owner detach must not free the object")

	err = s.client.RevokeAccessAs(tokenB, obj, false)
	s.ErrorIs(err, shrmem64.ErrDetachFailed)
}

func (s *ClientTestSuite) TestRevokeAccessIsOwnerDetach() {
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.client.RevokeAccess(tokenA, obj))
	calls := s.facility.Calls()
	s.Equal(shrmem64.RequestDetachSingleOwner, calls[len(calls)-1].Request)
	s.False(s.facility.HasAccess(obj, tokenA))
}

func (s *ClientTestSuite) TestRevokeAccessAsOwnerWithWrongToken() {
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.client.GrantAccess(tokenB, obj))

	err = s.client.RevokeAccessAs(tokenB, obj, true)
	var e *shrmem64.Error
	s.Require().ErrorAs(err, &e)
	s.Equal(shrmem64.DetachFailed, e.Kind)
	s.Equal(shrmem64test.RSNNotOwner, e.RSN)
}

func (s *ClientTestSuite) TestGrantAccessUnknownObject() {
	err := s.client.GrantAccess(tokenB, 0xDEAD00000)
	s.ErrorIs(err, shrmem64.ErrShareMemObjFailed)
}

func (s *ClientTestSuite) TestRevokeAllAccess() {
	a, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	b, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.client.GrantAccess(tokenB, a))
	s.Require().NoError(s.client.GrantAccess(tokenB, b))

	s.Require().NoError(s.client.RevokeAllAccess(tokenB))
	s.False(s.facility.HasAccess(a, tokenB))
	s.False(s.facility.HasAccess(b, tokenB))
	s.Len(s.facility.Objects(), 2)
}

func (s *ClientTestSuite) TestReleaseTwiceFails() {
	obj, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.client.Release(tokenA, obj))
	s.Empty(s.facility.Objects())

	err = s.client.Release(tokenA, obj)
	s.Require().Error(err, "second release must fail")
	s.ErrorIs(err, shrmem64.ErrSingleSysDetachFailed)
}

func (s *ClientTestSuite) TestReleaseAllIsSingleRequest() {
	a, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	b, err := s.client.AllocShared(tokenA, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.client.GrantAccess(tokenA, a))
	s.Require().NoError(s.client.GrantAccess(tokenA, b))

	before := len(s.facility.Calls())
	s.Require().NoError(s.client.ReleaseAll(tokenA))

	calls := s.facility.Calls()[before:]
	s.Require().Len(calls, 1)
	s.Equal(shrmem64.RequestReleaseAll, calls[0].Request)
	s.Equal(uint32(0), calls[0].RC)
	s.Empty(s.facility.Objects())
}

func (s *ClientTestSuite) TestReleaseAllFailure() {
	s.facility.FailNext(shrmem64.RequestReleaseAll, 8, 0x0A00FF00)
	err := s.client.ReleaseAll(tokenA)

	var e *shrmem64.Error
	s.Require().ErrorAs(err, &e)
	s.Equal(shrmem64.AllSysDetachFailed, e.Kind)
	s.Equal(shrmem64.EncodeStatus(shrmem64.AllSysDetachFailed, 8, 0x0A00FF00), e.Status)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewWithNilFacility(t *testing.T) {
	_, err := shrmem64.NewWithFacility(nil, shrmem64.Options{})
	require.Error(t, err)
}

func TestClientLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := shrmem64test.NewFacility()
	c, err := shrmem64.NewWithFacility(f, shrmem64.Options{Logger: logger})
	require.NoError(t, err)

	obj, err := c.AllocShared(tokenA, 1)
	require.NoError(t, err)
	require.NoError(t, c.Release(tokenA, obj))
	require.Error(t, c.Release(tokenA, obj))

	out := buf.String()
	assert.Contains(t, out, "request=getshared")
	assert.Contains(t, out, "request=release_single")
	assert.Contains(t, out, "IARV64 request failed")
	assert.Contains(t, out, "status=0x0B08000C")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}
