// Package shrmem64 provides Go bindings for z/OS 64-bit shared and common
// memory objects (IARV64).
//
// Provides allocation, cross-address-space sharing, access removal and
// release of memory objects, with IARV64 return and reason codes translated
// into a small set of error kinds.
//
// # Requirements
//
//   - z/OS with cgo enabled
//   - Authority to issue IARV64 REQUEST=GETSHARED / GETCOMMON
//     (GETCOMMON requires supervisor state or a system key)
//
// # Basic Usage
//
// Check if the system facility is available:
//
//	supported, err := shrmem64.Supported()
//	if err != nil || !supported {
//		log.Fatal("IARV64 not available on this system")
//	}
//
// Allocate a shared memory object and give another address space access:
//
//	c, err := shrmem64.New(shrmem64.Options{})
//	if err != nil {
//		log.Fatal("Failed to create client:", err)
//	}
//
//	token := c.AddressSpaceToken()
//
//	// Sizes are rounded up to whole 1 MiB segments
//	obj, err := c.AllocShared(token, 4<<20)
//	if err != nil {
//		log.Fatal("Failed to allocate:", err)
//	}
//	defer c.Release(token, obj)
//
//	if err := c.GrantAccess(peerToken, obj); err != nil {
//		log.Fatal("Failed to share:", err)
//	}
//
// Release every object tagged with a token in one request:
//
//	err = c.ReleaseAll(token)
//
// # Error Handling
//
// Failed requests return an *Error carrying the ErrorKind, the composite
// Status and the raw IARV64 return and reason codes:
//
//	var e *shrmem64.Error
//	if errors.As(err, &e) {
//		fmt.Printf("kind=%s status=%s rsn=0x%08X\n", e.Kind, e.Status, e.RSN)
//	}
//
// Status packs the kind into bits 31-24, the return code into bits 23-16 and
// the reason code shifted right by 8 into bits 15-0. It is bit-compatible
// with the reason value reported by the z/OS C library of the same name.
//
// Set SHRMEM64_ENV=production to get sanitized error messages.
//
// # Testing
//
// Package shrmem64test provides an in-memory Facility that simulates IARV64
// and can be scripted to fail:
//
//	f := shrmem64test.NewFacility()
//	f.FailNext(shrmem64.RequestGetShared, 8, 0x0A000301)
//	c, _ := shrmem64.NewWithFacility(f, shrmem64.Options{})
//
// # Platform Support
//
// z/OS only. Other platforms return ErrNotSupported from New and
// AddressSpaceToken; NewWithFacility works everywhere.
package shrmem64
