// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// TraceLog collects human-readable status lines describing each step of a
// retrieval call. A nil *TraceLog discards entries, so components can accept
// one unconditionally. TraceLog is not safe for concurrent use; concurrent
// stages record into their own logs and are merged in a fixed order.
type TraceLog struct {
	entries []string
}

// Addf appends a formatted entry.
func (t *TraceLog) Addf(format string, args ...any) {
	if t == nil {
		return
	}
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

// Append copies all entries of other onto t.
func (t *TraceLog) Append(other *TraceLog) {
	if t == nil || other == nil {
		return
	}
	t.entries = append(t.entries, other.entries...)
}

// Entries returns the recorded lines in order.
func (t *TraceLog) Entries() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *TraceLog) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
