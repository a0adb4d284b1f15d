package callsite

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const pcSize = 8

// initialFrames is the stack buffer used before falling back to the heap.
const initialFrames = 64

// Fingerprint identifies a call chain by its raw, unresolved return addresses.
// It is immutable and comparable through Key.
type Fingerprint struct {
	key   string
	hash  uint64
	depth int
}

// Key returns the opaque identity of the call chain. Equal keys mean equal chains.
func (f Fingerprint) Key() string { return f.key }

func (f Fingerprint) Hash() uint64 { return f.hash }

func (f Fingerprint) Depth() int { return f.depth }

func (f Fingerprint) IsZero() bool { return f.depth == 0 }

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.key == other.key
}

// PCs decodes the captured return addresses, innermost frame first.
// The addresses are never symbolized.
func (f Fingerprint) PCs() []uintptr {
	pcs := make([]uintptr, f.depth)
	for i := range pcs {
		pcs[i] = uintptr(binary.LittleEndian.Uint64([]byte(f.key[i*pcSize : (i+1)*pcSize])))
	}
	return pcs
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("callsite:%016x/%d", f.hash, f.depth)
}

// FromPCs builds a fingerprint from an explicit sequence of return addresses.
func FromPCs(pcs []uintptr) Fingerprint {
	var sb strings.Builder
	sb.Grow(len(pcs) * pcSize)
	var word [pcSize]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(word[:], uint64(pc))
		sb.Write(word[:])
	}
	return fromKey(sb.String())
}

// FromKey rebuilds a fingerprint from a value previously returned by Key.
// It panics if key is not a whole number of encoded addresses.
func FromKey(key string) Fingerprint {
	if len(key)%pcSize != 0 {
		panic(fmt.Sprintf("callsite: malformed key of length %d", len(key)))
	}
	return fromKey(key)
}

func fromKey(key string) Fingerprint {
	return Fingerprint{
		key:   key,
		hash:  xxhash.Sum64String(key),
		depth: len(key) / pcSize,
	}
}

// Capture fingerprints the calling goroutine's stack.
//
// skip == 0 starts at the caller of Capture. maxDepth <= 0 captures the whole
// chain; otherwise only the innermost maxDepth frames are kept, which makes
// every recursion depth of one lexical call site share a fingerprint when
// maxDepth is small enough.
func Capture(skip, maxDepth int) Fingerprint {
	// runtime.Callers itself and Capture are frames 0 and 1.
	skip += 2

	if maxDepth > 0 && maxDepth <= initialFrames {
		var buf [initialFrames]uintptr
		n := runtime.Callers(skip, buf[:maxDepth])
		return FromPCs(buf[:n])
	}

	var stackBuf [initialFrames]uintptr
	buf := stackBuf[:]
	if maxDepth > initialFrames {
		buf = make([]uintptr, maxDepth)
	}
	for {
		n := runtime.Callers(skip, buf)
		if n < len(buf) || maxDepth > 0 {
			return FromPCs(buf[:n])
		}
		buf = make([]uintptr, len(buf)*2)
	}
}
