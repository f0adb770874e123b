// Package dedup flags commits listed more than once during a collection run.
package dedup

import "github.com/huangsam/gitcensus/schema"

// Mode selects how an already-seen commit id is treated.
type Mode int

const (
	// FlagDuplicates keeps repeated commits and marks them duplicate. Used for non-fork projects.
	FlagDuplicates Mode = iota
	// IgnoreDuplicates drops repeated commits without recording them. Used for fork projects.
	IgnoreDuplicates
)

// Tracker owns the run-scoped set of seen commit ids.
// It must be fed projects sequentially, non-forks before forks.
type Tracker struct {
	seen       map[string]struct{}
	duplicates int
	skipped    int
}

// NewTracker returns an empty Tracker for one collection run.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Observe records id and reports whether it had been seen before.
func (t *Tracker) Observe(id string) bool {
	if _, ok := t.seen[id]; ok {
		return true
	}
	t.seen[id] = struct{}{}
	return false
}

// Seen reports whether id was already observed, without recording it.
func (t *Tracker) Seen(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Apply flags one project's commits in listing order.
//
// In FlagDuplicates mode every commit is kept and repeated ids get Duplicate=true.
// In IgnoreDuplicates mode repeated ids are skipped entirely.
func (t *Tracker) Apply(commits []schema.RawCommit, mode Mode) []schema.FlaggedCommit {
	flagged := make([]schema.FlaggedCommit, 0, len(commits))
	for _, c := range commits {
		if t.Seen(c.ID) {
			if mode == IgnoreDuplicates {
				t.skipped++
				continue
			}
			t.duplicates++
			flagged = append(flagged, schema.FlaggedCommit{RawCommit: c, Duplicate: true})
			continue
		}
		t.Observe(c.ID)
		flagged = append(flagged, schema.FlaggedCommit{RawCommit: c})
	}
	return flagged
}

// Duplicates returns the number of commits flagged duplicate so far.
func (t *Tracker) Duplicates() int { return t.duplicates }

// Skipped returns the number of fork commits dropped so far.
func (t *Tracker) Skipped() int { return t.skipped }

// Size returns the number of distinct commit ids observed.
func (t *Tracker) Size() int { return len(t.seen) }
