// Package memory implements the storage interfaces in process memory. It
// backs the bot when no database is configured and doubles as a test fake.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/storage"
)

// Store holds every record behind a single mutex. It implements
// storage.KeywordStore, storage.PrefixStore and storage.CharacterStore.
type Store struct {
	mu  sync.Mutex
	src dice.Source
	now func() time.Time

	keywords    map[string]storage.Keyword
	definitions map[string][]storage.Definition
	prefixes    map[storage.PrefixKey]string

	nextID     int64
	characters map[int64]storage.Character
	attributes map[int64]map[string]storage.Attribute
	notes      map[int64]map[string]storage.Note
	gms        map[string]string
}

// New creates an empty Store. src picks bareword definitions.
//
// Precondition: src must be non-nil.
func New(src dice.Source) *Store {
	return &Store{
		src:         src,
		now:         time.Now,
		keywords:    make(map[string]storage.Keyword),
		definitions: make(map[string][]storage.Definition),
		prefixes:    make(map[storage.PrefixKey]string),
		characters:  make(map[int64]storage.Character),
		attributes:  make(map[int64]map[string]storage.Attribute),
		notes:       make(map[int64]map[string]storage.Note),
		gms:         make(map[string]string),
	}
}

// Stores exposes s through every store interface.
func (s *Store) Stores() storage.Stores {
	return storage.Stores{Keywords: s, Prefixes: s, Characters: s}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Keyword implements storage.KeywordStore.
func (s *Store) Keyword(_ context.Context, name string) (storage.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw, ok := s.keywords[name]
	if !ok {
		return storage.Keyword{}, storage.ErrNotFound
	}
	return kw, nil
}

// AddKeyword implements storage.KeywordStore.
func (s *Store) AddKeyword(_ context.Context, kw storage.Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keywords[kw.Name]; ok {
		return storage.ErrExists
	}
	s.keywords[kw.Name] = kw
	return nil
}

// UpdateKeyword implements storage.KeywordStore.
func (s *Store) UpdateKeyword(_ context.Context, kw storage.Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keywords[kw.Name]; !ok {
		return storage.ErrNotFound
	}
	s.keywords[kw.Name] = kw
	return nil
}

// FindKeywords implements storage.KeywordStore.
func (s *Store) FindKeywords(_ context.Context, partial string) ([]storage.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Keyword
	for name, kw := range s.keywords {
		if containsFold(name, partial) {
			out = append(out, kw)
		}
	}
	slices.SortFunc(out, func(a, b storage.Keyword) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// Bareword implements storage.KeywordStore.
func (s *Store) Bareword(_ context.Context, name string) (storage.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw, ok := s.keywords[name]
	defs := s.definitions[name]
	if !ok || !kw.Bareword || len(defs) == 0 {
		return storage.Definition{}, storage.ErrNotFound
	}
	return defs[s.src.Intn(len(defs))], nil
}

// Definitions implements storage.KeywordStore.
func (s *Store) Definitions(_ context.Context, keyword string) ([]storage.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.definitions[keyword]), nil
}

// FindDefinitions implements storage.KeywordStore.
func (s *Store) FindDefinitions(_ context.Context, keyword, partial string) ([]storage.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Definition
	for _, d := range s.definitions[keyword] {
		if containsFold(d.Text, partial) {
			out = append(out, d)
		}
	}
	return out, nil
}

// AddDefinition implements storage.KeywordStore.
func (s *Store) AddDefinition(_ context.Context, def storage.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keywords[def.Keyword]; !ok {
		return storage.ErrNotFound
	}
	for _, d := range s.definitions[def.Keyword] {
		if d.Text == def.Text {
			return storage.ErrExists
		}
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = s.now()
	}
	s.definitions[def.Keyword] = append(s.definitions[def.Keyword], def)
	return nil
}

// DeleteDefinition implements storage.KeywordStore.
func (s *Store) DeleteDefinition(_ context.Context, keyword, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defs := s.definitions[keyword]
	i := slices.IndexFunc(defs, func(d storage.Definition) bool { return d.Text == text })
	if i < 0 {
		return storage.ErrNotFound
	}
	s.definitions[keyword] = slices.Delete(defs, i, i+1)
	return nil
}

// Prefixes implements storage.PrefixStore.
func (s *Store) Prefixes(context.Context) (map[storage.PrefixKey]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[storage.PrefixKey]string, len(s.prefixes))
	for k, v := range s.prefixes {
		out[k] = v
	}
	return out, nil
}

// SetPrefix implements storage.PrefixStore.
func (s *Store) SetPrefix(_ context.Context, key storage.PrefixKey, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes[key] = prefix
	return nil
}

// DeletePrefix implements storage.PrefixStore.
func (s *Store) DeletePrefix(_ context.Context, key storage.PrefixKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prefixes, key)
	return nil
}
