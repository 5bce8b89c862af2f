package timetable

import (
	"schooltimetable/internal/config"
	"schooltimetable/internal/models"
)

// Resolver finds team-teaching relationships around a slot.
//
// A slot is same_class team teaching when one of its lessons has several
// teachers, and same_teacher when another class has a lesson at the same
// time with the same subject and a shared teacher (a joint lesson).
//
// By default only classes directly linked to the queried slot are found.
// With Transitive set, linked lessons are expanded again until no new
// lesson turns up, so chains of three or more classes are followed.
type Resolver struct {
	school     *config.School
	slots      *SlotStore
	Transitive bool
}

// NewResolver creates a resolver reading from the given slot store
func NewResolver(school *config.School, slots *SlotStore) *Resolver {
	return &Resolver{school: school, slots: slots}
}

type linkedLesson struct {
	classID string
	lesson  models.Lesson
}

// IsTTSlot computes the team-teaching group rooted at a slot
func (r *Resolver) IsTTSlot(classID string, day, period int) models.TTGroup {
	root := r.slots.GetSlot(classID, day, period)
	if len(root) == 0 {
		return models.TTGroup{
			IsTT:       false,
			Type:       models.TTNone,
			Slots:      []models.TeacherLesson{},
			TeacherIDs: []string{},
			ClassIDs:   []string{},
		}
	}

	classIDs := newIDSet()
	classIDs.add(classID)
	teacherIDs := newIDSet()
	allSlots := make([]models.TeacherLesson, 0, len(root))
	sameClass := false
	sameTeacher := false

	queue := make([]linkedLesson, 0, len(root))
	for _, lesson := range root {
		allSlots = append(allSlots, models.TeacherLesson{Lesson: lesson.Clone(), ClassID: classID})
		teacherIDs.add(lesson.TeacherIDs...)
		if HasMultipleTeachers(lesson) {
			sameClass = true
		}
		queue = append(queue, linkedLesson{classID: classID, lesson: lesson})
	}

	for i := 0; i < len(queue); i++ {
		current := queue[i]
		for _, teacherID := range current.lesson.TeacherIDs {
			for _, class := range r.school.Classes {
				if class.ID == current.classID {
					continue
				}
				for _, other := range r.slots.GetSlot(class.ID, day, period) {
					if other.SubjectID != current.lesson.SubjectID || !other.HasTeacher(teacherID) {
						continue
					}

					sameTeacher = true
					classIDs.add(class.ID)
					teacherIDs.add(other.TeacherIDs...)

					if containsSlot(allSlots, class.ID, other.SubjectID) {
						continue
					}
					allSlots = append(allSlots, models.TeacherLesson{Lesson: other.Clone(), ClassID: class.ID})
					if r.Transitive {
						queue = append(queue, linkedLesson{classID: class.ID, lesson: other})
					}
				}
			}
		}
	}

	return models.TTGroup{
		IsTT:       sameClass || sameTeacher,
		Type:       classify(sameClass, sameTeacher),
		Slots:      allSlots,
		TeacherIDs: teacherIDs.list(),
		ClassIDs:   classIDs.list(),
	}
}

// GetLinkedSlots returns only the lessons of the group rooted at a slot
func (r *Resolver) GetLinkedSlots(classID string, day, period int) []models.TeacherLesson {
	return r.IsTTSlot(classID, day, period).Slots
}

// HasMultipleTeachers reports whether a lesson is co-taught within its class
func HasMultipleTeachers(lesson models.Lesson) bool {
	return len(lesson.TeacherIDs) > 1
}

// IsJointLesson reports whether a teacher's slot maps to more than one lesson.
// It works on lists already collected by GetTeacherTimetable.
func IsJointLesson(slots []models.TeacherLesson) bool {
	return len(slots) > 1
}

func classify(sameClass, sameTeacher bool) models.TTType {
	switch {
	case sameClass && sameTeacher:
		return models.TTBoth
	case sameClass:
		return models.TTSameClass
	case sameTeacher:
		return models.TTSameTeacher
	default:
		return models.TTNone
	}
}

func containsSlot(slots []models.TeacherLesson, classID, subjectID string) bool {
	for _, slot := range slots {
		if slot.ClassID == classID && slot.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// idSet is a set of ids that remembers insertion order
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(ids ...string) {
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

func (s *idSet) list() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
