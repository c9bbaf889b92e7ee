package cidxml

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// EntitySource is a named pointer-like value providing a public id, a
// system id, an optional forced encoding, and a factory that yields a byte
// stream (design §3). Entity sources are reference-counted; multiple
// spoolers may reference the same source.
type EntitySource interface {
	PublicID() string
	SystemID() string
	ForcedEncoding() string
	Open() (io.ReadCloser, error)

	// Retain/Release implement the reference-counting contract. Retain
	// returns the receiver for call chaining.
	Retain() EntitySource
	Release()
}

// refcount is embedded by every concrete EntitySource.
type refcount struct {
	n int32
}

func (r *refcount) retain() { atomic.AddInt32(&r.n, 1) }

// release decrements the count and reports whether it is now zero or below.
func (r *refcount) release() bool {
	return atomic.AddInt32(&r.n, -1) <= 0
}

// FileEntitySource resolves to a byte stream opened from a filesystem path.
type FileEntitySource struct {
	refcount
	Path_     string
	PublicID_ string
	Encoding_ string
}

// NewFileEntitySource returns a source over a filesystem path, usable as
// either the root entity or an externally referenced one.
func NewFileEntitySource(path string) *FileEntitySource {
	return &FileEntitySource{Path_: path}
}

func (f *FileEntitySource) PublicID() string       { return f.PublicID_ }
func (f *FileEntitySource) SystemID() string       { return f.Path_ }
func (f *FileEntitySource) ForcedEncoding() string  { return f.Encoding_ }
func (f *FileEntitySource) Open() (io.ReadCloser, error) {
	fh, err := os.Open(f.Path_)
	if err != nil {
		return nil, fmt.Errorf("cidxml: open %s: %w", f.Path_, err)
	}
	return fh, nil
}
func (f *FileEntitySource) Retain() EntitySource { f.retain(); return f }
func (f *FileEntitySource) Release()             { f.release() }

// MemBufEntitySource resolves to an in-memory byte buffer with a virtual
// system id, used for documents that don't come from disk (e.g. embedded
// catalog DTDs, test fixtures).
type MemBufEntitySource struct {
	refcount
	Data      []byte
	VirtualID string
	PublicID_ string
	Encoding_ string
}

// NewMemBufEntitySource wraps data under a virtual system id.
func NewMemBufEntitySource(virtualID string, data []byte) *MemBufEntitySource {
	return &MemBufEntitySource{Data: data, VirtualID: virtualID}
}

func (m *MemBufEntitySource) PublicID() string      { return m.PublicID_ }
func (m *MemBufEntitySource) SystemID() string      { return m.VirtualID }
func (m *MemBufEntitySource) ForcedEncoding() string { return m.Encoding_ }
func (m *MemBufEntitySource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}
func (m *MemBufEntitySource) Retain() EntitySource { m.retain(); return m }
func (m *MemBufEntitySource) Release()             { m.release() }

// FuncEntitySource is a user-supplied factory: opaque to the core, per
// design §3's "user-supplied" variant.
type FuncEntitySource struct {
	refcount
	OpenFunc  func() (io.ReadCloser, error)
	PublicID_ string
	SystemID_ string
	Encoding_ string
}

func (f *FuncEntitySource) PublicID() string       { return f.PublicID_ }
func (f *FuncEntitySource) SystemID() string       { return f.SystemID_ }
func (f *FuncEntitySource) ForcedEncoding() string  { return f.Encoding_ }
func (f *FuncEntitySource) Open() (io.ReadCloser, error) { return f.OpenFunc() }
func (f *FuncEntitySource) Retain() EntitySource   { f.retain(); return f }
func (f *FuncEntitySource) Release()               { f.release() }
