package directory

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Set is the in-memory faculty and participation tables.
// It is safe for concurrent use, although curator commands are single-threaded.
type Set struct {
	mu             sync.RWMutex
	faculty        map[string]*Faculty
	participations []Participation
}

// NewSet creates a set from existing tables. Later faculty entries with a
// repeated id overwrite earlier ones.
func NewSet(faculty []Faculty, participations []Participation) *Set {
	s := &Set{
		faculty:        make(map[string]*Faculty, len(faculty)),
		participations: slices.Clone(participations),
	}
	for i := range faculty {
		f := faculty[i]
		s.faculty[f.ID] = &f
	}
	return s
}

// Get returns a copy of the faculty with the given id.
func (s *Set) Get(id string) (Faculty, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faculty[id]
	if !ok {
		return Faculty{}, false
	}
	return *f, true
}

// Exists reports whether a faculty id is present.
func (s *Set) Exists(id string) bool {
	s.mu.RLock()
	_, ok := s.faculty[id]
	s.mu.RUnlock()
	return ok
}

// Put inserts or overwrites a faculty record.
func (s *Set) Put(f Faculty) error {
	if f.ID == "" {
		return fmt.Errorf("faculty id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faculty[f.ID] = &f
	return nil
}

// Delete removes a faculty record. Participations are left untouched.
func (s *Set) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faculty[id]; !ok {
		return false
	}
	delete(s.faculty, id)
	return true
}

// Len returns the number of faculty.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.faculty)
}

// List returns all faculty ordered by id.
func (s *Set) List() []Faculty {
	s.mu.RLock()
	out := make([]Faculty, 0, len(s.faculty))
	for _, f := range s.faculty {
		out = append(out, *f)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Faculty) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Participations returns a copy of the participation table in its current order.
func (s *Set) Participations() []Participation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.participations)
}

// AddParticipations appends participations without deduplicating.
// Call Normalize before persisting.
func (s *Set) AddParticipations(ps ...Participation) {
	s.mu.Lock()
	s.participations = append(s.participations, ps...)
	s.mu.Unlock()
}

// RepointParticipations moves every participation of from onto to and
// returns how many records were rewritten.
func (s *Set) RepointParticipations(from, to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.participations {
		if s.participations[i].FacultyID == from {
			s.participations[i].FacultyID = to
			n++
		}
	}
	return n
}

// RemoveParticipationsFor drops every participation of the given faculty ids.
func (s *Set) RemoveParticipationsFor(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.participations)
	s.participations = slices.DeleteFunc(s.participations, func(p Participation) bool {
		_, ok := drop[p.FacultyID]
		return ok
	})
	return before - len(s.participations)
}

// Normalize removes duplicate participation triples and restores the
// persisted order. It returns the number of duplicates dropped.
func (s *Set) Normalize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.participations)
	s.participations = DedupeParticipations(s.participations)
	SortParticipations(s.participations)
	return before - len(s.participations)
}

// ParticipationCounts returns the number of participations per faculty id.
func (s *Set) ParticipationCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, len(s.faculty))
	for _, p := range s.participations {
		counts[p.FacultyID]++
	}
	return counts
}
