package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// School is the static description of the school the timetable is built for.
// It is loaded once and handed to every component that needs it.
type School struct {
	Name     string    `json:"name"`
	Classes  []Class   `json:"classes"`
	Days     []string  `json:"days"`
	Periods  int       `json:"periods"`
	Subjects []Subject `json:"subjects"`
	Teachers []Teacher `json:"teachers"`
	Rooms    []Room    `json:"rooms"`
}

type Class struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade,omitempty"`
}

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is a special classroom (lab, gym, music room...)
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoadSchool reads the school description from a JSON file
func LoadSchool(path string) (*School, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read school config %s: %w", path, err)
	}

	var school School
	if err := json.Unmarshal(content, &school); err != nil {
		return nil, fmt.Errorf("failed to parse school config %s: %w", path, err)
	}

	if err := school.Validate(); err != nil {
		return nil, err
	}

	return &school, nil
}

// DefaultSchool returns the built-in school used when no config file is given
func DefaultSchool() *School {
	return &School{
		Name: "Sample School",
		Classes: []Class{
			{ID: "1-1", Name: "Grade 1 Class 1", Grade: 1},
			{ID: "1-2", Name: "Grade 1 Class 2", Grade: 1},
			{ID: "2-1", Name: "Grade 2 Class 1", Grade: 2},
			{ID: "2-2", Name: "Grade 2 Class 2", Grade: 2},
		},
		Days:    []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		Periods: 6,
		Subjects: []Subject{
			{ID: "math", Name: "Mathematics"},
			{ID: "lang", Name: "Language"},
			{ID: "sci", Name: "Science"},
			{ID: "pe", Name: "Physical Education"},
			{ID: "music", Name: "Music"},
		},
		Teachers: []Teacher{
			{ID: "t1", Name: "Teacher 1"},
			{ID: "t2", Name: "Teacher 2"},
			{ID: "t3", Name: "Teacher 3"},
			{ID: "t4", Name: "Teacher 4"},
		},
		Rooms: []Room{
			{ID: "gym", Name: "Gymnasium"},
			{ID: "lab", Name: "Science Lab"},
			{ID: "music-room", Name: "Music Room"},
		},
	}
}

// Validate checks the school description is usable
func (s *School) Validate() error {
	if len(s.Classes) == 0 {
		return fmt.Errorf("school config: at least one class is required")
	}
	if len(s.Days) == 0 {
		return fmt.Errorf("school config: at least one day is required")
	}
	if s.Periods <= 0 {
		return fmt.Errorf("school config: periods must be positive, got %d", s.Periods)
	}

	seen := make(map[string]bool, len(s.Classes))
	for _, class := range s.Classes {
		if class.ID == "" {
			return fmt.Errorf("school config: class id must not be empty")
		}
		if seen[class.ID] {
			return fmt.Errorf("school config: duplicate class id %q", class.ID)
		}
		seen[class.ID] = true
	}

	return nil
}

// HasClass reports whether the class id is configured
func (s *School) HasClass(id string) bool {
	for _, class := range s.Classes {
		if class.ID == id {
			return true
		}
	}
	return false
}

func (s *School) HasSubject(id string) bool {
	for _, subject := range s.Subjects {
		if subject.ID == id {
			return true
		}
	}
	return false
}

func (s *School) HasTeacher(id string) bool {
	for _, teacher := range s.Teachers {
		if teacher.ID == id {
			return true
		}
	}
	return false
}

func (s *School) HasRoom(id string) bool {
	for _, room := range s.Rooms {
		if room.ID == id {
			return true
		}
	}
	return false
}

// ClassName returns the display name of a class, falling back to its id
func (s *School) ClassName(id string) string {
	for _, class := range s.Classes {
		if class.ID == id && class.Name != "" {
			return class.Name
		}
	}
	return id
}

// SubjectName returns the display name of a subject, falling back to its id
func (s *School) SubjectName(id string) string {
	for _, subject := range s.Subjects {
		if subject.ID == id && subject.Name != "" {
			return subject.Name
		}
	}
	return id
}

func (s *School) TeacherName(id string) string {
	for _, teacher := range s.Teachers {
		if teacher.ID == id && teacher.Name != "" {
			return teacher.Name
		}
	}
	return id
}

func (s *School) RoomName(id string) string {
	for _, room := range s.Rooms {
		if room.ID == id && room.Name != "" {
			return room.Name
		}
	}
	return id
}

// DayName returns the label of a day index
func (s *School) DayName(day int) string {
	if day >= 0 && day < len(s.Days) {
		return s.Days[day]
	}
	return fmt.Sprintf("day %d", day)
}

// InRange reports whether day and period fall inside the configured week
func (s *School) InRange(day, period int) bool {
	return day >= 0 && day < len(s.Days) && period >= 0 && period < s.Periods
}
