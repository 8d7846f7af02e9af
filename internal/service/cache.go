package service

import (
	"sort"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

// Cache is one room's ordered message list. Messages arrive from three
// sources (the global listener, the room listener and the history fetch)
// in any order, possibly overlapping; the cache keeps the sequence sorted
// ascending by creation time with uniqueness enforced by message id.
//
// Merge is idempotent and commutative, so the final sequence is the same
// for every interleaving of the three sources.
type Cache struct {
	seen map[uuid.UUID]struct{}
	msgs []domain.Message
}

func NewCache() *Cache {
	return &Cache{seen: make(map[uuid.UUID]struct{})}
}

// Merge inserts msg unless a message with the same id is already present.
// Reports whether the message was inserted.
func (c *Cache) Merge(msg domain.Message) bool {
	if _, ok := c.seen[msg.ID]; ok {
		return false
	}
	c.seen[msg.ID] = struct{}{}
	c.msgs = append(c.msgs, msg)
	c.resort()
	return true
}

// MergeAll merges a batch (typically a history page) and returns how many
// messages were actually new. Messages already delivered live are skipped.
func (c *Cache) MergeAll(msgs []domain.Message) int {
	added := 0
	for _, m := range msgs {
		if _, ok := c.seen[m.ID]; ok {
			continue
		}
		c.seen[m.ID] = struct{}{}
		c.msgs = append(c.msgs, m)
		added++
	}
	if added > 0 {
		c.resort()
	}
	return added
}

// Messages returns a copy of the ordered sequence.
func (c *Cache) Messages() []domain.Message {
	out := make([]domain.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Cache) Len() int {
	return len(c.msgs)
}

// resort keeps the ascending-by-timestamp order, stable for equal
// timestamps so insertion order breaks ties.
func (c *Cache) resort() {
	sort.SliceStable(c.msgs, func(i, j int) bool {
		return c.msgs[i].CreatedAt.Before(c.msgs[j].CreatedAt)
	})
}
