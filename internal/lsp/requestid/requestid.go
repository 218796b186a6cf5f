// Package requestid generates the opaque tokens the external interface
// (spec.md §6, §5) uses to correlate an editor request with its eventual
// response and to let a client cancel an in-flight request, plus the
// generation tag the background indexer stamps on each of its passes.
// Tokens are github.com/google/uuid values, the same identifier library
// the teacher's own remote-registry client uses for request correlation.
package requestid

import "github.com/google/uuid"

// Token is an opaque per-request identifier.
type Token string

// New returns a fresh, globally unique Token.
func New() Token {
	return Token(uuid.NewString())
}

// Generation tags one run of the background indexer (spec.md §4.8): a
// client's "await-indexing" call can compare the generation it observed
// against the indexer's current one to tell whether it waited for the
// expected pass or a newer one had already started.
type Generation uint64

// Tracker hands out increasing [Generation] values and remembers the
// latest one started and the latest one completed.
type Tracker struct {
	current   Generation
	completed Generation
}

// Begin starts a new generation and returns its identifier.
func (t *Tracker) Begin() Generation {
	t.current++
	return t.current
}

// Complete records that generation g has finished, provided it is the
// latest one started (an older generation completing late is a no-op --
// a newer pass has already superseded it).
func (t *Tracker) Complete(g Generation) {
	if g == t.current && g > t.completed {
		t.completed = g
	}
}

// Completed reports the most recently completed generation.
func (t *Tracker) Completed() Generation { return t.completed }

// Current reports the most recently started generation.
func (t *Tracker) Current() Generation { return t.current }

// IsCurrentDone reports whether the most recently started generation has
// also completed: the condition an "await-indexing" call blocks on.
func (t *Tracker) IsCurrentDone() bool { return t.completed == t.current }

// CancelSet tracks which request tokens have been asked to cancel, so a
// long-running analysis can poll [CancelSet.IsCanceled] at a cooperative
// yield point (spec.md §5 "cooperative preemption").
type CancelSet struct {
	canceled map[Token]bool
}

// Cancel marks tok as canceled.
func (c *CancelSet) Cancel(tok Token) {
	if c.canceled == nil {
		c.canceled = make(map[Token]bool)
	}
	c.canceled[tok] = true
}

// IsCanceled reports whether tok has been canceled.
func (c *CancelSet) IsCanceled(tok Token) bool {
	return c.canceled != nil && c.canceled[tok]
}

// Clear forgets tok's cancellation state, once its request has actually
// finished (cancellation tokens are not meant to accumulate forever).
func (c *CancelSet) Clear(tok Token) {
	delete(c.canceled, tok)
}
