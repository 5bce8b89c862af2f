package service

import (
	"fmt"
	"log"

	"schooltimetable/internal/models"
	"schooltimetable/internal/repository"
)

// PersistentStore keeps the timetable in memory and writes it through to the
// database on every save
type PersistentStore struct {
	repo      *repository.TimetableRepository
	timetable models.Timetable
	debug     bool
}

// NewPersistentStore creates an empty store. Call Load to read existing data.
func NewPersistentStore(repo *repository.TimetableRepository, debug bool) *PersistentStore {
	return &PersistentStore{
		repo:      repo,
		timetable: make(models.Timetable),
		debug:     debug,
	}
}

// Load replaces the in-memory timetable with the stored one
func (s *PersistentStore) Load() error {
	loaded, err := s.repo.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load timetable: %w", err)
	}
	s.replaceContents(loaded)

	if s.debug {
		log.Printf("[DEBUG] Loaded timetable with %d classes", len(s.timetable))
	}
	return nil
}

// Timetable returns the live timetable map
func (s *PersistentStore) Timetable() models.Timetable {
	return s.timetable
}

// SaveToStorage rewrites the stored timetable from memory
func (s *PersistentStore) SaveToStorage() error {
	if err := s.repo.ReplaceAll(s.timetable); err != nil {
		return err
	}
	if s.debug {
		log.Printf("[DEBUG] Timetable saved (%d classes)", len(s.timetable))
	}
	return nil
}

// Replace swaps in a whole timetable and saves it. The map returned by
// Timetable stays the same value so holders of it see the new contents.
func (s *PersistentStore) Replace(timetable models.Timetable) error {
	s.replaceContents(timetable)
	return s.SaveToStorage()
}

// Merge overwrites the slots present in timetable and keeps every other slot
func (s *PersistentStore) Merge(timetable models.Timetable) error {
	for classID, slots := range timetable {
		current, ok := s.timetable[classID]
		if !ok {
			current = make(models.ClassSlots)
			s.timetable[classID] = current
		}
		for key, lessons := range slots {
			current[key] = cloneLessons(lessons)
		}
	}
	return s.SaveToStorage()
}

func (s *PersistentStore) replaceContents(timetable models.Timetable) {
	for classID := range s.timetable {
		delete(s.timetable, classID)
	}
	for classID, slots := range timetable {
		copied := make(models.ClassSlots, len(slots))
		for key, lessons := range slots {
			copied[key] = cloneLessons(lessons)
		}
		s.timetable[classID] = copied
	}
}

func cloneLessons(lessons []models.Lesson) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.Clone())
	}
	return out
}
