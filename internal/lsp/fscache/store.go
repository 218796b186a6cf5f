// Package fscache is the document store (spec.md §4.1): the single source
// of truth for file text, hiding from every other component whether a file
// is currently open in the editor or must be read from disk. It is modeled
// on the overlay-over-disk split in the teacher's own
// internal/lsp/fscache package, simplified down to exactly the read/open/
// update/close/watch-notification surface spec.md names.
package fscache

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Source identifies where a [Freshness] token's content came from.
type Source int

const (
	// SourceDisk marks a token produced by statting the filesystem.
	SourceDisk Source = iota
	// SourceBuffer marks a token produced by an open editor buffer.
	SourceBuffer
)

func (s Source) String() string {
	if s == SourceBuffer {
		return "buffer"
	}
	return "disk"
}

// Freshness is a (source, stamp) pair identifying a specific content
// revision of a file (spec.md §4.1). Two tokens from different sources are
// never considered equal, even if they happen to coincide numerically --
// switching source always invalidates prior tokens, per spec.
type Freshness struct {
	Source Source
	// Version is the editor-supplied monotonic version, valid when
	// Source == SourceBuffer.
	Version int64
	// Size and ModTime are the on-disk stat results, valid when
	// Source == SourceDisk.
	Size    int64
	ModTime time.Time
}

// Equal reports whether f and g identify the same content revision.
func (f Freshness) Equal(g Freshness) bool {
	if f.Source != g.Source {
		return false
	}
	switch f.Source {
	case SourceBuffer:
		return f.Version == g.Version
	default:
		return f.Size == g.Size && f.ModTime.Equal(g.ModTime)
	}
}

func (f Freshness) String() string {
	switch f.Source {
	case SourceBuffer:
		return fmt.Sprintf("buffer@%d", f.Version)
	default:
		return fmt.Sprintf("disk@%d:%s", f.Size, f.ModTime.Format(time.RFC3339Nano))
	}
}

// NotFoundError is returned by [Store.Read] when neither an open buffer nor
// a disk file exists at the given path (spec.md §4.1 "NotFound").
type NotFoundError struct{ Path string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("file not found: %s", e.Path) }

// IoError wraps an underlying I/O failure encountered while statting or
// reading a disk file (spec.md §4.1 "IoError").
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error reading %s: %v", e.Path, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// DiskReader abstracts filesystem access so tests can substitute an
// in-memory tree (see internal/lsp/fixture) without touching a real
// filesystem. The default implementation, [OSReader], wraps os.ReadFile and
// os.Stat.
type DiskReader interface {
	ReadFile(path string) (content []byte, modTime time.Time, size int64, err error)
}

// OSReader is the default [DiskReader], backed by the real filesystem.
type OSReader struct{}

func (OSReader) ReadFile(path string) ([]byte, time.Time, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	return content, info.ModTime(), info.Size(), nil
}

type buffer struct {
	version int64
	text    []byte
}

type diskEntry struct {
	stale bool // set by watch-notification; forces the next read to re-stat
	freshness Freshness
	content   []byte
	err       error
}

// Store is the document store. It is safe for concurrent use: a single
// mutex guards both maps, readers never hold it longer than it takes to
// copy out a snapshot (spec.md §5 "readers hold the lock only long enough
// to snapshot").
type Store struct {
	mu      sync.Mutex
	buffers map[string]*buffer
	disk    map[string]*diskEntry
	reader  DiskReader
}

// NewStore creates an empty Store backed by reader. Pass nil to use
// [OSReader].
func NewStore(reader DiskReader) *Store {
	if reader == nil {
		reader = OSReader{}
	}
	return &Store{
		buffers: make(map[string]*buffer),
		disk:    make(map[string]*diskEntry),
		reader:  reader,
	}
}

// Read returns path's current text and freshness token. An open buffer, if
// any, always wins over the on-disk content (spec.md §4.1).
func (s *Store) Read(path string) ([]byte, Freshness, error) {
	s.mu.Lock()
	if b, ok := s.buffers[path]; ok {
		text, version := b.text, b.version
		s.mu.Unlock()
		return text, Freshness{Source: SourceBuffer, Version: version}, nil
	}
	entry, cached := s.disk[path]
	stale := !cached || entry.stale
	s.mu.Unlock()

	if !stale {
		if entry.err != nil {
			return nil, Freshness{}, entry.err
		}
		return entry.content, entry.freshness, nil
	}
	return s.statAndCache(path)
}

func (s *Store) statAndCache(path string) ([]byte, Freshness, error) {
	content, modTime, size, err := s.reader.ReadFile(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A buffer might have been opened while we were off doing I/O; it
	// always takes priority, and we don't cache a disk entry in that case.
	if b, ok := s.buffers[path]; ok {
		return b.text, Freshness{Source: SourceBuffer, Version: b.version}, nil
	}

	if err != nil {
		var wrapped error
		if os.IsNotExist(err) {
			wrapped = &NotFoundError{Path: path}
		} else {
			wrapped = &IoError{Path: path, Err: err}
		}
		s.disk[path] = &diskEntry{err: wrapped}
		return nil, Freshness{}, wrapped
	}

	fr := Freshness{Source: SourceDisk, Size: size, ModTime: modTime}
	s.disk[path] = &diskEntry{freshness: fr, content: content}
	return content, fr, nil
}

// Open records that path is now open in the editor with the given initial
// version and text, taking priority over any disk content.
func (s *Store) Open(path string, version int64, text []byte) {
	s.mu.Lock()
	s.buffers[path] = &buffer{version: version, text: text}
	s.mu.Unlock()
}

// Update replaces the text of an already-open buffer. The editor is
// expected to supply a strictly increasing version on each call; Update
// does not enforce that.
func (s *Store) Update(path string, version int64, text []byte) {
	s.mu.Lock()
	s.buffers[path] = &buffer{version: version, text: text}
	s.mu.Unlock()
}

// Close removes path's open buffer. Future [Store.Read] calls fall back to
// disk.
func (s *Store) Close(path string) {
	s.mu.Lock()
	delete(s.buffers, path)
	s.mu.Unlock()
}

// WatchNotification marks path's cached disk stamp stale, forcing the next
// [Store.Read] to re-stat it (spec.md §4.1).
func (s *Store) WatchNotification(path string) {
	s.mu.Lock()
	if e, ok := s.disk[path]; ok {
		e.stale = true
	}
	s.mu.Unlock()
}

// IsOpen reports whether path currently has an open buffer.
func (s *Store) IsOpen(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.buffers[path]
	return ok
}
