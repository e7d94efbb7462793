//go:build zos && cgo

package shrmem64

/*
#include <stdint.h>

#define IARV64_V4PLIST_SIZE 160
#define PSAAOLD  0x224
#define ASCBASID 0x24

#define SHRMEM64_ASM_PREFIX "         SYSSTATE AMODE64=YES                   \n"

static uint64_t go_iarv64_getshared(uint64_t segments, uint64_t token,
                                    uint32_t *rc, uint32_t *rsn) {
	uint64_t result = 0;
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=GETSHARED"
		",USERTKN=(%[token])"
		",COND=YES"
		",SEGMENTS=(%[size])"
		",ORIGIN=(%[result])"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [token]"r"(&token), [size]"r"(&segments), [result]"r"(&result),
		  [parm]"r"(&parmList)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
	return result;
}

static uint64_t go_iarv64_getcommon(uint64_t segments, uint64_t token, char keyByte,
                                    uint32_t *rc, uint32_t *rsn) {
	uint64_t result = 0;
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=GETCOMMON"
		",MOTKN=(%[token])"
		",COND=YES"
		",KEY=%[key]"
		",FPROT=NO"
		",SEGMENTS=(%[size])"
		",ORIGIN=(%[result])"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [token]"r"(&token), [size]"r"(&segments), [result]"r"(&result),
		  [parm]"r"(&parmList), [key]"m"(keyByte)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
	return result;
}

static void go_iarv64_sharememobj(uint64_t object, uint64_t token,
                                  uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	struct {
		uint64_t vsa;
		uint64_t reserved;
	} rangeList = {object, 0};

	uint64_t rangeListAddress = (uint64_t)&rangeList;

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=SHAREMEMOBJ"
		",USERTKN=(%[token])"
		",RANGLIST=(%[range])"
		",NUMRANGE=1"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [token]"r"(&token), [range]"r"(&rangeListAddress), [parm]"r"(&parmList)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

static void go_iarv64_detach_single_owner(uint64_t object, uint64_t token,
                                          uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=DETACH"
		",MATCH=SINGLE"
		",MEMOBJSTART=(%[mobj])"
		",MOTKN=(%[token])"
		",MOTKNCREATOR=USER"
		",AFFINITY=LOCAL"
		",OWNER=YES"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [mobj]"r"(&object), [parm]"r"(&parmList), [token]"r"(&token)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

static void go_iarv64_detach_single_not_owner(uint64_t object, uint64_t token,
                                              uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=DETACH"
		",MATCH=SINGLE"
		",MEMOBJSTART=(%[mobj])"
		",MOTKN=(%[token])"
		",MOTKNCREATOR=USER"
		",AFFINITY=LOCAL"
		",OWNER=NO"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [mobj]"r"(&object), [parm]"r"(&parmList), [token]"r"(&token)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

static void go_iarv64_detach_by_token(uint64_t token, uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=DETACH"
		",MATCH=MOTOKEN"
		",MOTKN=(%[token])"
		",MOTKNCREATOR=USER"
		",AFFINITY=LOCAL"
		",OWNER=YES"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [token]"r"(&token), [parm]"r"(&parmList)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

static void go_iarv64_remove_system_interest(uint64_t object, uint64_t token,
                                             uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=DETACH"
		",MATCH=SINGLE"
		",MEMOBJSTART=(%[mobj])"
		",MOTKN=(%[token])"
		",MOTKNCREATOR=USER"
		",AFFINITY=SYSTEM"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [mobj]"r"(&object), [token]"r"(&token), [parm]"r"(&parmList)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

static void go_iarv64_remove_system_interest_all(uint64_t token,
                                                 uint32_t *rc, uint32_t *rsn) {
	int localRC = 0;
	int localRSN = 0;
	char parmList[IARV64_V4PLIST_SIZE] = {0};

	__asm(
		SHRMEM64_ASM_PREFIX
		"         IARV64 REQUEST=DETACH"
		",MATCH=MOTOKEN"
		",MOTKN=(%[token])"
		",MOTKNCREATOR=USER"
		",AFFINITY=SYSTEM"
		",COND=YES"
		",RETCODE=%[rc]"
		",RSNCODE=%[rsn]"
		",PLISTVER=4"
		",MF=(E,(%[parm]),COMPLETE)                                              \n"
		: [rc]"=m"(localRC), [rsn]"=m"(localRSN)
		: [token]"r"(&token), [parm]"r"(&parmList)
		: "r0", "r1", "r14", "r15"
	);

	*rc = localRC;
	*rsn = localRSN;
}

// PSAAOLD holds the 31-bit address of the current ASCB.
static void go_current_address_space(uint32_t *ascb, uint16_t *asid) {
	int *mem = (int *)0;
	uint32_t a = (uint32_t)mem[PSAAOLD / sizeof(int)] & 0x7FFFFFFF;
	*ascb = a;
	*asid = *(uint16_t *)((uintptr_t)a + ASCBASID);
}
*/
import "C"

type systemFacility struct{}

// NewSystemFacility returns the Facility that issues IARV64 directly.
func NewSystemFacility() (Facility, error) {
	return systemFacility{}, nil
}

func (systemFacility) GetShared(segments uint64, token Token) (MemObj, uint32, uint32) {
	var rc, rsn C.uint32_t
	obj := C.go_iarv64_getshared(C.uint64_t(segments), C.uint64_t(token), &rc, &rsn)
	return MemObj(obj), uint32(rc), uint32(rsn)
}

func (systemFacility) GetCommon(segments uint64, token Token, key uint8) (MemObj, uint32, uint32) {
	var rc, rsn C.uint32_t
	obj := C.go_iarv64_getcommon(C.uint64_t(segments), C.uint64_t(token), C.char(key), &rc, &rsn)
	return MemObj(obj), uint32(rc), uint32(rsn)
}

func (systemFacility) ShareMemObj(obj MemObj, token Token) (uint32, uint32) {
	var rc, rsn C.uint32_t
	C.go_iarv64_sharememobj(C.uint64_t(obj), C.uint64_t(token), &rc, &rsn)
	return uint32(rc), uint32(rsn)
}

func (systemFacility) DetachSingle(obj MemObj, token Token, owner bool) (uint32, uint32) {
	var rc, rsn C.uint32_t
	if owner {
		C.go_iarv64_detach_single_owner(C.uint64_t(obj), C.uint64_t(token), &rc, &rsn)
	} else {
		C.go_iarv64_detach_single_not_owner(C.uint64_t(obj), C.uint64_t(token), &rc, &rsn)
	}
	return uint32(rc), uint32(rsn)
}

func (systemFacility) DetachByToken(token Token) (uint32, uint32) {
	var rc, rsn C.uint32_t
	C.go_iarv64_detach_by_token(C.uint64_t(token), &rc, &rsn)
	return uint32(rc), uint32(rsn)
}

func (systemFacility) RemoveSystemInterest(obj MemObj, token Token) (uint32, uint32) {
	var rc, rsn C.uint32_t
	C.go_iarv64_remove_system_interest(C.uint64_t(obj), C.uint64_t(token), &rc, &rsn)
	return uint32(rc), uint32(rsn)
}

func (systemFacility) RemoveSystemInterestAll(token Token) (uint32, uint32) {
	var rc, rsn C.uint32_t
	C.go_iarv64_remove_system_interest_all(C.uint64_t(token), &rc, &rsn)
	return uint32(rc), uint32(rsn)
}

type psaContext struct{}

// SystemContext returns the ExecutionContext that reads the current ASCB
// through the PSA.
func SystemContext() (ExecutionContext, error) {
	return psaContext{}, nil
}

func (psaContext) AddressSpace() (uint32, uint16) {
	var ascb C.uint32_t
	var asid C.uint16_t
	C.go_current_address_space(&ascb, &asid)
	return uint32(ascb), uint16(asid)
}
