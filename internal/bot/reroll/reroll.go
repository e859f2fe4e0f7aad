// Package reroll remembers which input produced a roll reply so that reacting
// to the reply can roll the same input again.
package reroll

import "context"

// DefaultCapacity is the number of entries a store keeps before evicting the oldest.
const DefaultCapacity = 512

// Entry is the input behind one roll reply.
type Entry struct {
	Input      string `json:"input"`
	AuthorName string `json:"author_name"`
}

// Store maps reply ids to the Entry that produced them.
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// Put records entry under replyID, replacing any previous entry.
	Put(ctx context.Context, replyID string, entry Entry) error
	// Take removes and returns the entry for replyID.
	//
	// Postcondition: ok is false when no entry exists.
	Take(ctx context.Context, replyID string) (entry Entry, ok bool, err error)
	// Close releases any resources held by the store.
	Close() error
}
