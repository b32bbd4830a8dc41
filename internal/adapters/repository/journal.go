package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Treap-based, in-memory Journal implementation.
//
// Ordering: verification time DESC, then run ID ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., newer events rank earlier). This makes in-order traversal
// produce the record log from newest to oldest, which is the order
// both the report and the persisted file use.

// treap node
type node struct {
	id    string
	epoch int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aEpoch, aID) should appear before (bEpoch, bID)
// in the journal (newer events first).
func less(aEpoch int64, aID string, bEpoch int64, bID string) bool {
	if aEpoch != bEpoch {
		return aEpoch > bEpoch // newer events rank earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority derives a stable treap priority from the run identifier, so the
// tree shape is reproducible given the same set of events.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, epoch int64) *node {
	if n == nil {
		return &node{id: id, epoch: epoch, prio: priority(id), size: 1}
	}
	if less(epoch, id, n.epoch, n.id) {
		n.left = insert(n.left, id, epoch)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, epoch)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, epoch int64) *node {
	if n == nil {
		return nil
	}
	if epoch == n.epoch && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, epoch)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, epoch)
		}
	} else if less(epoch, id, n.epoch, n.id) {
		n.left = deleteNode(n.left, id, epoch)
	} else {
		n.right = deleteNode(n.right, id, epoch)
	}
	fix(n)
	return n
}

// collectAll appends all events in journal order (newest first).
func collectAll(n *node, byID map[string]model.RecordEvent, out *[]model.RecordEvent) {
	if n == nil {
		return
	}
	collectAll(n.left, byID, out)
	if ev, ok := byID[n.id]; ok {
		*out = append(*out, ev)
	}
	collectAll(n.right, byID, out)
}

// collectSince appends events verified at or after floor, in journal order.
// Returns false once the walk crosses the window edge: every node further
// right is older, so the parent calls stop descending.
func collectSince(n *node, floor int64, byID map[string]model.RecordEvent, out *[]model.RecordEvent) bool {
	if n == nil {
		return true
	}
	if !collectSince(n.left, floor, byID, out) {
		return false
	}
	if n.epoch < floor {
		return false
	}
	if ev, ok := byID[n.id]; ok {
		*out = append(*out, ev)
	}
	return collectSince(n.right, floor, byID, out)
}

// TreapJournal is the in-memory Journal used by the scanner.
type TreapJournal struct {
	mu   sync.RWMutex
	root *node
	byID map[string]model.RecordEvent
}

// NewTreapJournal constructs an empty journal.
func NewTreapJournal() *TreapJournal {
	return &TreapJournal{byID: make(map[string]model.RecordEvent)}
}

// Append implements Journal.Append with O(log n) expected time.
func (j *TreapJournal) Append(ctx context.Context, ev model.RecordEvent) error {
	if ev.RunID == "" {
		return ErrEmptyID
	}

	j.mu.Lock()
	if _, ok := j.byID[ev.RunID]; ok {
		j.mu.Unlock()
		return ErrDuplicate
	}
	j.byID[ev.RunID] = ev
	j.root = insert(j.root, ev.RunID, ev.VerifiedEpoch)
	size := len(j.byID)
	j.mu.Unlock()

	// Update metrics outside lock
	metrics.RecordEventAppended()
	metrics.UpdateJournalSize(size)
	return nil
}

// Amend implements Journal.Amend. The event keeps its journal position
// unless the amendment moved its verification time.
func (j *TreapJournal) Amend(ctx context.Context, ev model.RecordEvent) error {
	if ev.RunID == "" {
		return ErrEmptyID
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	old, ok := j.byID[ev.RunID]
	if !ok {
		return ErrNotFound
	}
	if old.VerifiedEpoch != ev.VerifiedEpoch {
		j.root = deleteNode(j.root, ev.RunID, old.VerifiedEpoch)
		j.root = insert(j.root, ev.RunID, ev.VerifiedEpoch)
	}
	j.byID[ev.RunID] = ev
	return nil
}

// All implements Journal.All.
func (j *TreapJournal) All(ctx context.Context) []model.RecordEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]model.RecordEvent, 0, len(j.byID))
	collectAll(j.root, j.byID, &out)
	return out
}

// Since implements Journal.Since. The window edge is inclusive.
func (j *TreapJournal) Since(ctx context.Context, cutoff time.Time) []model.RecordEvent {
	floor := cutoff.Unix()

	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]model.RecordEvent, 0, len(j.byID))
	collectSince(j.root, floor, j.byID, &out)
	return out
}

// IDs implements Journal.IDs. Order is unspecified.
func (j *TreapJournal) IDs(ctx context.Context) []string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]string, 0, len(j.byID))
	for id := range j.byID {
		out = append(out, id)
	}
	return out
}

// Prune implements Journal.Prune. Dropped events leave both the tree and
// the ID index, so their run IDs may be journaled again later.
func (j *TreapJournal) Prune(ctx context.Context, cutoff time.Time) int {
	floor := cutoff.Unix()

	j.mu.Lock()
	var victims []model.RecordEvent
	for _, ev := range j.byID {
		if ev.VerifiedEpoch < floor {
			victims = append(victims, ev)
		}
	}
	for _, ev := range victims {
		j.root = deleteNode(j.root, ev.RunID, ev.VerifiedEpoch)
		delete(j.byID, ev.RunID)
	}
	size := len(j.byID)
	j.mu.Unlock()

	if len(victims) > 0 {
		metrics.RecordEventsPruned(len(victims))
	}
	metrics.UpdateJournalSize(size)
	return len(victims)
}

// Count implements Journal.Count.
func (j *TreapJournal) Count(ctx context.Context) int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.byID)
}
