package rdm

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// UID is a 48-bit RDM device identifier: a 16-bit manufacturer ID and
// a 32-bit device ID, held as a 64-bit integer with the top 16 bits
// zero, exactly as rdm_tools.c's rdm_uid_t union does in memory.
type UID uint64

const (
	// MaxUID is the highest UID a real device may hold;
	// 0xFFFFFFFFFFFF is reserved for BroadcastUID.
	MaxUID UID = 0x0000FFFFFFFFFFFE
	// BroadcastUID addresses every device on the bus.
	BroadcastUID UID = 0x0000FFFFFFFFFFFF

	// DefaultManufacturerID is used when deriving a UID from a locally
	// generated device ID rather than a real ESTA-assigned block.
	DefaultManufacturerID uint16 = 0x7FF0
)

// ManufacturerID returns the top 16 bits of the UID.
func (u UID) ManufacturerID() uint16 { return uint16(u >> 32) }

// DeviceID returns the bottom 32 bits of the UID.
func (u UID) DeviceID() uint32 { return uint32(u) }

// Bytes returns u as 6 big-endian bytes, the on-wire representation
// used everywhere outside of the DISC_UNIQUE_BRANCH interleave.
func (u UID) Bytes() [6]byte {
	var b [6]byte
	b[0] = byte(u >> 40)
	b[1] = byte(u >> 32)
	b[2] = byte(u >> 24)
	b[3] = byte(u >> 16)
	b[4] = byte(u >> 8)
	b[5] = byte(u)
	return b
}

// UIDFromBytes parses 6 big-endian bytes into a UID. It panics if buf
// is shorter than 6 bytes; callers are expected to have already
// validated packet length.
func UIDFromBytes(buf []byte) UID {
	_ = buf[5]
	return UID(buf[0])<<40 | UID(buf[1])<<32 | UID(buf[2])<<24 |
		UID(buf[3])<<16 | UID(buf[4])<<8 | UID(buf[5])
}

// PutUID writes u into buf as 6 big-endian bytes. It panics if buf is
// shorter than 6 bytes.
func PutUID(buf []byte, u UID) {
	b := u.Bytes()
	copy(buf[:6], b[:])
}

func (u UID) String() string {
	return fmt.Sprintf("%04X:%08X", u.ManufacturerID(), u.DeviceID())
}

// InRange reports whether u falls within the inclusive [lower, upper]
// bracket carried in a DISC_UNIQUE_BRANCH request's PDL.
func (u UID) InRange(lower, upper UID) bool {
	return u >= lower && u <= upper
}

var (
	uidMu       sync.Mutex
	uid         UID
	uidLatched  bool
	deviceIDGen = randomDeviceID
)

// SetDeviceIDSource overrides how the bottom 32 bits of a
// lazily-generated UID are produced. TinyGo targets call this once at
// startup with a function reading the chip's unique ID; host builds
// default to a random 32 bits.
func SetDeviceIDSource(f func() uint32) {
	uidMu.Lock()
	defer uidMu.Unlock()
	if f != nil {
		deviceIDGen = f
	}
}

func randomDeviceID() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// GetUID returns this process's RDM UID, deriving it from
// deviceIDGen on first call and caching it thereafter. Once GetUID has
// been called the UID is latched: SetUID after that point returns
// false, mirroring spec.md's "set permitted only before first
// transmit" rule.
func GetUID() UID {
	uidMu.Lock()
	defer uidMu.Unlock()
	if uid == 0 {
		uid = UID(DefaultManufacturerID)<<32 | UID(deviceIDGen())
	}
	uidLatched = true
	return uid
}

// SetUID overrides the device UID. It fails once GetUID has already
// been called, whether or not the UID has been sent on the bus yet.
func SetUID(u UID) bool {
	uidMu.Lock()
	defer uidMu.Unlock()
	if uidLatched {
		return false
	}
	uid = u
	return true
}
