package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimeKey identifies a (day, period) position within a week
type TimeKey struct {
	Day    int
	Period int
}

// String renders the key as "day-period", the form used in persisted data
func (k TimeKey) String() string {
	return strconv.Itoa(k.Day) + "-" + strconv.Itoa(k.Period)
}

// MarshalText lets TimeKey be used as a JSON object key
func (k TimeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "day-period" form
func (k *TimeKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTimeKey parses a "day-period" string
func ParseTimeKey(s string) (TimeKey, error) {
	dayPart, periodPart, ok := strings.Cut(s, "-")
	if !ok {
		return TimeKey{}, fmt.Errorf("invalid time key %q", s)
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		return TimeKey{}, fmt.Errorf("invalid day in time key %q: %w", s, err)
	}
	period, err := strconv.Atoi(periodPart)
	if err != nil {
		return TimeKey{}, fmt.Errorf("invalid period in time key %q: %w", s, err)
	}
	return TimeKey{Day: day, Period: period}, nil
}

// ClassSlots maps a time to the lessons of one class at that time
type ClassSlots map[TimeKey][]Lesson

// Timetable maps class ids to their slots
type Timetable map[string]ClassSlots

// UnmarshalJSON decodes a timetable, accepting the legacy shape where a slot
// holds a single lesson object instead of a list
func (t *Timetable) UnmarshalJSON(data []byte) error {
	var raw map[string]map[TimeKey]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := make(Timetable, len(raw))
	for classID, slots := range raw {
		classSlots := make(ClassSlots, len(slots))
		for key, value := range slots {
			lessons, err := DecodeLessons(value)
			if err != nil {
				return fmt.Errorf("class %s slot %s: %w", classID, key, err)
			}
			classSlots[key] = lessons
		}
		decoded[classID] = classSlots
	}

	*t = decoded
	return nil
}

// DecodeLessons normalizes a persisted slot value into a lesson list.
// null decodes to an empty list and a bare object to a one-element list.
func DecodeLessons(data json.RawMessage) ([]Lesson, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		return []Lesson{}, nil
	case strings.HasPrefix(trimmed, "["):
		var lessons []Lesson
		if err := json.Unmarshal(data, &lessons); err != nil {
			return nil, err
		}
		out := make([]Lesson, 0, len(lessons))
		for _, lesson := range lessons {
			out = append(out, normalizeLesson(lesson))
		}
		return out, nil
	case strings.HasPrefix(trimmed, "{"):
		var lesson Lesson
		if err := json.Unmarshal(data, &lesson); err != nil {
			return nil, err
		}
		return []Lesson{normalizeLesson(lesson)}, nil
	default:
		return nil, fmt.Errorf("unexpected slot value %s", trimmed)
	}
}

func normalizeLesson(l Lesson) Lesson {
	if len(l.SpecialClassroomIDs) == 0 {
		l.SpecialClassroomIDs = nil
	}
	return l
}
