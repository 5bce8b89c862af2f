package timetable

import (
	"errors"
	"log"

	"schooltimetable/internal/config"
	"schooltimetable/internal/models"
)

// ErrUnknownClass is returned by lookups for a class that is not configured
var ErrUnknownClass = errors.New("unknown class")

// MoveResult reports the outcome of MoveSlot
type MoveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const nothingToMove = "nothing to move"

// SlotStore is the only way lessons get into or out of the timetable
type SlotStore struct {
	school      *config.School
	store       Store
	lastSaveErr error
}

// NewSlotStore creates a slot store over the given persistence store
func NewSlotStore(school *config.School, store Store) *SlotStore {
	return &SlotStore{school: school, store: store}
}

// School returns the configuration the store was built with
func (s *SlotStore) School() *config.School {
	return s.school
}

// GetSlot returns the lessons at a slot. Unknown classes or times yield an
// empty, non-nil list.
func (s *SlotStore) GetSlot(classID string, day, period int) []models.Lesson {
	slots, ok := s.store.Timetable()[classID]
	if !ok {
		return []models.Lesson{}
	}

	lessons := slots[models.TimeKey{Day: day, Period: period}]
	out := make([]models.Lesson, len(lessons))
	copy(out, lessons)
	return out
}

// SetSlot places a lesson at a slot. With appendToSlot the lesson is added next to
// the existing ones, otherwise it replaces them. A missing subject or teacher
// list clears the slot, unless appendToSlot is set, in which case nothing happens.
func (s *SlotStore) SetSlot(classID string, day, period int, subjectID string, teacherIDs, specialClassroomIDs []string, appendToSlot bool) bool {
	s.lastSaveErr = nil
	return s.setSlot(classID, day, period, subjectID, teacherIDs, specialClassroomIDs, appendToSlot)
}

func (s *SlotStore) setSlot(classID string, day, period int, subjectID string, teacherIDs, specialClassroomIDs []string, appendToSlot bool) bool {
	key := models.TimeKey{Day: day, Period: period}
	teachers := compactIDs(teacherIDs)

	switch {
	case subjectID != "" && len(teachers) > 0:
		lesson := models.Lesson{
			SubjectID:           subjectID,
			TeacherIDs:          teachers,
			SpecialClassroomIDs: compactIDs(specialClassroomIDs),
		}
		slots := s.classSlots(classID)
		if appendToSlot {
			slots[key] = appendLesson(slots[key], lesson)
		} else {
			slots[key] = []models.Lesson{lesson}
		}
	case !appendToSlot:
		s.classSlots(classID)[key] = []models.Lesson{}
	default:
		return true
	}

	s.save()
	return true
}

// ClearSlot empties a slot of a class that already has timetable entries
func (s *SlotStore) ClearSlot(classID string, day, period int) {
	s.lastSaveErr = nil
	s.clearSlot(classID, day, period)
}

func (s *SlotStore) clearSlot(classID string, day, period int) {
	slots, ok := s.store.Timetable()[classID]
	if !ok {
		return
	}
	slots[models.TimeKey{Day: day, Period: period}] = []models.Lesson{}
	s.save()
}

// MoveSlot moves the first lesson of the source slot to the destination.
// The source is cleared before the destination is written, so moving a slot
// onto itself keeps only its first lesson.
func (s *SlotStore) MoveSlot(fromClassID string, fromDay, fromPeriod int, toClassID string, toDay, toPeriod int) MoveResult {
	s.lastSaveErr = nil
	source := s.GetSlot(fromClassID, fromDay, fromPeriod)
	if len(source) == 0 {
		return MoveResult{Success: false, Message: nothingToMove}
	}

	lesson := source[0]
	s.clearSlot(fromClassID, fromDay, fromPeriod)
	s.setSlot(toClassID, toDay, toPeriod, lesson.SubjectID, lesson.TeacherIDs, lesson.SpecialClassroomIDs, false)

	return MoveResult{Success: true}
}

// GetTeacherTimetable collects every lesson the teacher takes part in,
// keyed by time and tagged with the owning class
func (s *SlotStore) GetTeacherTimetable(teacherID string) map[models.TimeKey][]models.TeacherLesson {
	result := make(map[models.TimeKey][]models.TeacherLesson)

	for _, class := range s.school.Classes {
		for day := range s.school.Days {
			for period := 0; period < s.school.Periods; period++ {
				for _, lesson := range s.GetSlot(class.ID, day, period) {
					if !lesson.HasTeacher(teacherID) {
						continue
					}
					key := models.TimeKey{Day: day, Period: period}
					result[key] = append(result[key], models.TeacherLesson{Lesson: lesson.Clone(), ClassID: class.ID})
				}
			}
		}
	}

	return result
}

// ClassTimetable returns the whole week of one class as [day][period] lessons
func (s *SlotStore) ClassTimetable(classID string) ([][][]models.Lesson, error) {
	if !s.school.HasClass(classID) {
		return nil, ErrUnknownClass
	}

	week := make([][][]models.Lesson, len(s.school.Days))
	for day := range week {
		week[day] = make([][]models.Lesson, s.school.Periods)
		for period := range week[day] {
			week[day][period] = s.GetSlot(classID, day, period)
		}
	}
	return week, nil
}

// LastSaveError returns the first save failure of the most recent mutation.
// It is nil when that mutation saved successfully or had nothing to save.
func (s *SlotStore) LastSaveError() error {
	return s.lastSaveErr
}

func (s *SlotStore) classSlots(classID string) models.ClassSlots {
	timetable := s.store.Timetable()
	slots, ok := timetable[classID]
	if !ok {
		slots = make(models.ClassSlots)
		timetable[classID] = slots
	}
	return slots
}

func (s *SlotStore) save() {
	if err := s.store.SaveToStorage(); err != nil {
		if s.lastSaveErr == nil {
			s.lastSaveErr = err
		}
		log.Printf("Failed to save timetable: %v", err)
	}
}

// appendLesson copies before appending so earlier readers never see the change
func appendLesson(lessons []models.Lesson, lesson models.Lesson) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons)+1)
	out = append(out, lessons...)
	return append(out, lesson)
}

// compactIDs drops empty ids and returns nil when none are left
func compactIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
