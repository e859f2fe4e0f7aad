package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// AddCharacter implements storage.CharacterStore.
func (s *Store) AddCharacter(_ context.Context, ch storage.Character) (storage.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.characters {
		if c.Name == ch.Name && c.Channel == ch.Channel {
			return storage.Character{}, storage.ErrExists
		}
	}
	s.nextID++
	ch.ID = s.nextID
	ch.UpdatedAt = s.now()
	s.characters[ch.ID] = ch
	s.attributes[ch.ID] = make(map[string]storage.Attribute)
	s.notes[ch.ID] = make(map[string]storage.Note)
	return ch, nil
}

// Character implements storage.CharacterStore.
func (s *Store) Character(_ context.Context, name, channel string) (storage.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.characters {
		if c.Name == name && c.Channel == channel {
			return c, nil
		}
	}
	return storage.Character{}, storage.ErrNotFound
}

// Characters implements storage.CharacterStore.
func (s *Store) Characters(_ context.Context, channel string) ([]storage.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Character
	for _, c := range s.characters {
		if c.Channel == channel {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b storage.Character) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// DeleteCharacter implements storage.CharacterStore.
func (s *Store) DeleteCharacter(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.characters, id)
	delete(s.attributes, id)
	delete(s.notes, id)
	return nil
}

// TouchCharacter implements storage.CharacterStore.
func (s *Store) TouchCharacter(_ context.Context, id int64, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Comment = comment
	c.UpdatedAt = s.now()
	s.characters[id] = c
	return nil
}

// Attribute implements storage.CharacterStore.
func (s *Store) Attribute(_ context.Context, id int64, name string) (storage.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attributes[id][name]
	if !ok {
		return storage.Attribute{}, storage.ErrNotFound
	}
	return a, nil
}

// Attributes implements storage.CharacterStore.
func (s *Store) Attributes(_ context.Context, id int64) ([]storage.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Attribute, 0, len(s.attributes[id]))
	for _, a := range s.attributes[id] {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b storage.Attribute) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// SetAttribute implements storage.CharacterStore.
func (s *Store) SetAttribute(_ context.Context, id int64, attr storage.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs, ok := s.attributes[id]
	if !ok {
		return storage.ErrNotFound
	}
	attrs[attr.Name] = attr
	return nil
}

// DeleteAttribute implements storage.CharacterStore.
func (s *Store) DeleteAttribute(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attributes[id][name]; !ok {
		return storage.ErrNotFound
	}
	delete(s.attributes[id], name)
	return nil
}

// Notes implements storage.CharacterStore.
func (s *Store) Notes(_ context.Context, id int64) ([]storage.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Note, 0, len(s.notes[id]))
	for _, n := range s.notes[id] {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b storage.Note) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// SetNote implements storage.CharacterStore.
func (s *Store) SetNote(_ context.Context, id int64, note storage.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, ok := s.notes[id]
	if !ok {
		return storage.ErrNotFound
	}
	notes[note.Name] = note
	return nil
}

// DeleteNote implements storage.CharacterStore.
func (s *Store) DeleteNote(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id][name]; !ok {
		return storage.ErrNotFound
	}
	delete(s.notes[id], name)
	return nil
}

// GameMaster implements storage.CharacterStore.
func (s *Store) GameMaster(_ context.Context, channel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gm, ok := s.gms[channel]
	if !ok {
		return "", storage.ErrNotFound
	}
	return gm, nil
}

// SetGameMaster implements storage.CharacterStore.
func (s *Store) SetGameMaster(_ context.Context, channel, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gms[channel] = user
	return nil
}

// ClearGameMaster implements storage.CharacterStore.
func (s *Store) ClearGameMaster(_ context.Context, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gms, channel)
	return nil
}
