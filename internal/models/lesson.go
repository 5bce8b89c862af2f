package models

// Lesson is one teaching occurrence placed in a timetable slot
type Lesson struct {
	SubjectID  string   `json:"subjectId"`
	TeacherIDs []string `json:"teacherIds"`
	// SpecialClassroomIDs is nil when the lesson uses no special room, never empty
	SpecialClassroomIDs []string `json:"specialClassroomIds"`
}

// HasTeacher reports whether the teacher takes part in the lesson
func (l Lesson) HasTeacher(teacherID string) bool {
	for _, id := range l.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

// UsesRoom reports whether the lesson is held in the given special classroom
func (l Lesson) UsesRoom(roomID string) bool {
	for _, id := range l.SpecialClassroomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with l
func (l Lesson) Clone() Lesson {
	clone := Lesson{SubjectID: l.SubjectID}
	if l.TeacherIDs != nil {
		clone.TeacherIDs = append([]string(nil), l.TeacherIDs...)
	}
	if len(l.SpecialClassroomIDs) > 0 {
		clone.SpecialClassroomIDs = append([]string(nil), l.SpecialClassroomIDs...)
	}
	return clone
}

// TeacherLesson is a lesson tagged with the class it belongs to
type TeacherLesson struct {
	Lesson
	ClassID string `json:"classId"`
}
