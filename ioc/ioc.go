// Package ioc computes Linux ioctl request numbers using the kernel's
// generic encoding scheme from include/uapi/asm-generic/ioctl.h: an 8-bit
// command number, an 8-bit magic type byte, a 14-bit payload size, and a
// 2-bit transfer direction packed into one 32-bit word.
package ioc

// Field widths and shifts of the request word. The 14-bit size field is the
// asm-generic layout; PPC, MIPS, SPARC and Alpha use 13 bits and are not
// supported.
const (
	nrBits   = 8
	typeBits = 8
	sizeBits = 14

	nrShift   = 0
	typeShift = nrShift + nrBits
	sizeShift = typeShift + typeBits
	dirShift  = sizeShift + sizeBits
)

// Transfer directions, from userspace's point of view: Read means the kernel
// copies data out to the caller, Write means the caller hands data in.
const (
	None  uint32 = 0
	Write uint32 = 1
	Read  uint32 = 2
)

// IOC packs a direction, a magic type byte, a command number, and a payload
// size into a request number, bit for bit what the kernel's _IOC macro
// produces. It is a pure function: the same inputs always yield the same
// request.
func IOC(dir uint32, typ, nr byte, size uintptr) uint32 {
	return dir<<dirShift | uint32(typ)<<typeShift | uint32(nr)<<nrShift | uint32(size)<<sizeShift
}

// IOR encodes a read request carrying size payload bytes (_IOR).
func IOR(typ, nr byte, size uintptr) uint32 {
	return IOC(Read, typ, nr, size)
}

// IOW encodes a write request carrying size payload bytes (_IOW).
func IOW(typ, nr byte, size uintptr) uint32 {
	return IOC(Write, typ, nr, size)
}

// Command is a precomputed ioctl request plus the metadata needed to drive
// the matching syscall. Commands are immutable values meant to be computed
// once, at package initialization, and shared.
type Command struct {
	// Dir is one of None, Write, or Read.
	Dir uint32
	// Op is the encoded request number handed to the ioctl syscall.
	Op uint32
	// Size is the payload size in bytes baked into Op.
	Size uint32
}

// NewCommand encodes a Command for the given direction, magic type byte,
// command number, and payload size.
func NewCommand(dir uint32, typ, nr byte, size uintptr) Command {
	return Command{Dir: dir, Op: IOC(dir, typ, nr, size), Size: uint32(size)}
}
