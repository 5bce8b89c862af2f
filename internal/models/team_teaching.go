package models

import "encoding/json"

// TTType classifies how the lessons of a slot are linked
type TTType string

const (
	// TTNone marks a slot without team teaching; it serializes as null
	TTNone        TTType = ""
	TTSameClass   TTType = "same_class"
	TTSameTeacher TTType = "same_teacher"
	TTBoth        TTType = "both"
)

// MarshalJSON writes TTNone as null
func (t TTType) MarshalJSON() ([]byte, error) {
	if t == TTNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// TTGroup describes the lessons related to one queried slot
type TTGroup struct {
	IsTT       bool            `json:"isTT"`
	Type       TTType          `json:"type"`
	Slots      []TeacherLesson `json:"slots"`
	TeacherIDs []string        `json:"teacherIds"`
	ClassIDs   []string        `json:"classIds"`
}
