package timetable

import "schooltimetable/internal/models"

// Store owns the in-memory timetable and knows how to persist it.
// SlotStore mutates the map returned by Timetable and then calls SaveToStorage.
type Store interface {
	Timetable() models.Timetable
	SaveToStorage() error
}

// MemoryStore keeps the timetable in memory only
type MemoryStore struct {
	timetable models.Timetable
	saves     int
}

// NewMemoryStore creates a store around an existing timetable (nil starts empty)
func NewMemoryStore(timetable models.Timetable) *MemoryStore {
	if timetable == nil {
		timetable = make(models.Timetable)
	}
	return &MemoryStore{timetable: timetable}
}

func (s *MemoryStore) Timetable() models.Timetable {
	return s.timetable
}

// SaveToStorage only counts calls
func (s *MemoryStore) SaveToStorage() error {
	s.saves++
	return nil
}

// Saves returns how many times SaveToStorage was called
func (s *MemoryStore) Saves() int {
	return s.saves
}
