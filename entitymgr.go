package cidxml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lestrrat/cidxml/cidxmlcodec"
)

// EntityManager owns a stack of entity spoolers and multiplexes them into a
// single logical character stream, per design component C3.
type EntityManager struct {
	stack   []frame
	Resolve EntityResolverFunc

	// ThrowAtEnd, when true, causes PeekNext/GetNext et al. to return
	// errEndOfEntity instead of silently popping and retrying. The
	// character-data aggregator turns this on so it can flush buffered
	// text at entity boundaries.
	ThrowAtEnd bool
}

type frame struct {
	sp   *Spooler
	decl *EntityDecl
}

// EntityResolverFunc resolves an external entity reference to a byte
// source, mirroring the sax.EntityResolver collaborator.
type EntityResolverFunc func(publicID, systemID, name, parentSystemID string, kind ExternalKind) (EntitySource, error)

// ExternalKind distinguishes what an external resolution request is for.
type ExternalKind int

const (
	ExternalSubsetKind ExternalKind = iota
	ExternalParamEntityKind
	ExternalGeneralEntityKind
)

// NewEntityManager returns an empty manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{}
}

// PushEntity pushes sp onto the stack, after checking for recursion: if
// decl is non-nil and an entity of the same name is already on the stack,
// the push fails (testable property §8.6).
func (m *EntityManager) PushEntity(sp *Spooler, decl *EntityDecl) error {
	if decl != nil {
		for _, f := range m.stack {
			if f.decl != nil && f.decl.Name() == decl.Name() {
				return fmt.Errorf("cidxml: %w: %s", errRecursiveEntity, decl.Name())
			}
		}
	}
	m.stack = append(m.stack, frame{sp: sp, decl: decl})
	return nil
}

var errRecursiveEntity = fmt.Errorf("recursive entity reference")

// IsRecursiveEntity reports whether err was produced by a recursion check
// in PushEntity.
func IsRecursiveEntity(err error) bool {
	return err != nil && errIs(err, errRecursiveEntity)
}

func errIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Depth returns the number of spoolers currently on the stack.
func (m *EntityManager) Depth() int { return len(m.stack) }

// Empty reports whether the stack has been fully drained.
func (m *EntityManager) Empty() bool { return len(m.stack) == 0 }

func (m *EntityManager) top() *frame {
	if len(m.stack) == 0 {
		return nil
	}
	return &m.stack[len(m.stack)-1]
}

// TopDecl returns the entity declaration the current top-of-stack spooler
// was pushed for, or nil if it is the root entity.
func (m *EntityManager) TopDecl() *EntityDecl {
	f := m.top()
	if f == nil {
		return nil
	}
	return f.decl
}

// TopSpooler returns the current top-of-stack spooler, or nil if empty.
func (m *EntityManager) TopSpooler() *Spooler {
	f := m.top()
	if f == nil {
		return nil
	}
	return f.sp
}

// popAndRetry pops the exhausted top spooler, returning the entity
// declaration it was reading (nil for the root entity). When ThrowAtEnd is
// set, it instead returns errEndOfEntity without popping so the caller
// (character-data aggregator) can flush and retry explicitly via Pop.
func (m *EntityManager) popAndRetry() (*EntityDecl, uint64, error) {
	f := m.top()
	if f == nil {
		return nil, 0, nil
	}
	if m.ThrowAtEnd {
		return nil, 0, &errEndOfEntity{decl: f.decl, spoolerID: f.sp.ID()}
	}
	id := f.sp.ID()
	decl := f.decl
	f.sp.Close()
	m.stack = m.stack[:len(m.stack)-1]
	return decl, id, nil
}

// Pop unconditionally pops the top-of-stack spooler (used after the caller
// has observed and handled an errEndOfEntity while ThrowAtEnd was set).
func (m *EntityManager) Pop() (*EntityDecl, uint64) {
	f := m.top()
	if f == nil {
		return nil, 0
	}
	id := f.sp.ID()
	decl := f.decl
	f.sp.Close()
	m.stack = m.stack[:len(m.stack)-1]
	return decl, id
}

// PeekNext delegates to the top spooler, popping exhausted spoolers and
// retrying unless ThrowAtEnd is set.
func (m *EntityManager) PeekNext() (rune, error) {
	for {
		f := m.top()
		if f == nil {
			return 0, nil
		}
		if !f.sp.AtEOF() {
			return f.sp.PeekNext(), nil
		}
		if _, _, err := m.popAndRetry(); err != nil {
			return 0, err
		}
	}
}

// GetNext delegates to the top spooler, popping exhausted spoolers and
// retrying unless ThrowAtEnd is set.
func (m *EntityManager) GetNext() (rune, error) {
	for {
		f := m.top()
		if f == nil {
			return 0, nil
		}
		if !f.sp.AtEOF() {
			return f.sp.GetNext(), nil
		}
		if _, _, err := m.popAndRetry(); err != nil {
			return 0, err
		}
	}
}

// GetNextIfNot delegates to the top spooler.
func (m *EntityManager) GetNextIfNot(c rune) (rune, bool, error) {
	r, err := m.PeekNext()
	if err != nil {
		return 0, false, err
	}
	if r == c {
		return 0, false, nil
	}
	got, err := m.GetNext()
	return got, true, err
}

// SkippedChar delegates to the top spooler.
func (m *EntityManager) SkippedChar(c rune) (bool, error) {
	r, err := m.PeekNext()
	if err != nil || r != c {
		return false, err
	}
	_, err = m.GetNext()
	return err == nil, err
}

// SkippedString delegates to the top spooler; it does not cross entity
// boundaries, per the design's "a quoted literal must not span entities"
// invariant family (a skipped-string match is always attempted against a
// single spooler).
func (m *EntityManager) SkippedString(str string) bool {
	f := m.top()
	if f == nil {
		return false
	}
	return f.sp.SkippedString(str)
}

// SkippedSpaces consumes whitespace, optionally crossing entity boundaries
// (each pop emits an end-of-entity event via the returned popped decl
// slice, which the caller should report to StartEntity/EndEntity handlers).
func (m *EntityManager) SkippedSpaces(crossEntities bool) (advanced bool, popped []*EntityDecl, err error) {
	for {
		f := m.top()
		if f == nil {
			return advanced, popped, nil
		}
		a, hitEnd := f.sp.SkipSpaces()
		advanced = advanced || a
		if !hitEnd {
			return advanced, popped, nil
		}
		if !crossEntities {
			return advanced, popped, nil
		}
		decl, _, perr := m.popAndRetry()
		if perr != nil {
			return advanced, popped, perr
		}
		if len(m.stack) == 0 && decl == nil {
			return advanced, popped, nil
		}
		popped = append(popped, decl)
	}
}

// LastExternalSystemID walks the stack from the top down to the nearest
// external entity (one with a non-empty system id), used to resolve
// relative system ids of newly-referenced external entities.
func (m *EntityManager) LastExternalSystemID() string {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].sp.SystemID != "" && !m.stack[i].sp.Interned {
			return m.stack[i].sp.SystemID
		}
	}
	return ""
}

// NewSpoolerFromSource builds a spooler over an external entity source,
// auto-sensing its encoding family from the first few bytes.
func (m *EntityManager) NewSpoolerFromSource(src EntitySource) (*Spooler, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("cidxml: %w: %s", errCannotOpen, src.SystemID())
	}
	prefix := make([]byte, 4)
	n, _ := io.ReadFull(rc, prefix)
	prefix = prefix[:n]
	family := cidxmlcodec.Sniff(prefix)
	full := io.MultiReader(bytes.NewReader(prefix), rc)
	sp := NewSpooler(src.SystemID(), full, family)
	sp.SetCloser(rc)
	return sp, nil
}

// CloseAll closes every spooler still on the stack and empties it. The
// parser driver calls this from the entity-stack janitor when a parse
// unwinds, whether by completing normally or by an error escaping.
func (m *EntityManager) CloseAll() {
	for _, f := range m.stack {
		f.sp.Close()
	}
	m.stack = nil
}

var errCannotOpen = fmt.Errorf("cannot open entity")
