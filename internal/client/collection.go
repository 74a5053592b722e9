package client

import (
	"sync"

	"civicdesk.org/internal/complaint"
)

// Collection is the in-memory complaint set a portal view renders from.
// It is a pure state holder: mutations come from gateway results and
// live channel events, and it never performs I/O itself. All methods
// are safe for concurrent use.
type Collection struct {
	mu    sync.RWMutex
	items []complaint.Complaint
	index map[string]int

	subs   map[int]func()
	nextID int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int), subs: make(map[int]func())}
}

// Subscribe registers fn to run after every mutation. The returned
// function removes the subscription.
func (c *Collection) Subscribe(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Snapshot returns a copy of the current items in insertion order.
func (c *Collection) Snapshot() []complaint.Complaint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]complaint.Complaint, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of complaints held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the complaint with the given id.
func (c *Collection) Get(id string) (complaint.Complaint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return complaint.Complaint{}, false
	}
	return c.items[i], true
}

// ReplaceAll swaps the entire collection, typically after a list fetch.
func (c *Collection) ReplaceAll(items []complaint.Complaint) {
	c.mu.Lock()
	c.items = make([]complaint.Complaint, len(items))
	copy(c.items, items)
	c.index = make(map[string]int, len(items))
	for i, item := range c.items {
		c.index[item.ID] = i
	}
	c.mu.Unlock()
	c.notify()
}

// Append adds a newly submitted complaint to the end of the set. An
// id already in the set is replaced in place so no stale duplicate
// lingers behind the index.
func (c *Collection) Append(item complaint.Complaint) {
	c.mu.Lock()
	if i, ok := c.index[item.ID]; ok {
		c.items[i] = item
	} else {
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	c.mu.Unlock()
	c.notify()
}

// ApplyStatusPatch updates the status of an existing complaint. An
// unknown id is a silent no-op: patches never insert, and they touch
// no field other than Status. Returns whether anything changed.
func (c *Collection) ApplyStatusPatch(id, status string) bool {
	c.mu.Lock()
	i, ok := c.index[id]
	if !ok || c.items[i].Status == status {
		c.mu.Unlock()
		return false
	}
	c.items[i].Status = status
	c.mu.Unlock()
	c.notify()
	return true
}

// Replace swaps a single complaint in place, typically after a respond
// or assign call returns the updated record. Unknown ids are ignored.
func (c *Collection) Replace(item complaint.Complaint) bool {
	c.mu.Lock()
	i, ok := c.index[item.ID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.items[i] = item
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Collection) notify() {
	c.mu.RLock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
