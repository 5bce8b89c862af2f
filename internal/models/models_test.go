package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseTimeKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeKey
		wantErr bool
	}{
		{name: "valid", input: "2-5", want: TimeKey{Day: 2, Period: 5}},
		{name: "zero", input: "0-0", want: TimeKey{}},
		{name: "missing separator", input: "25", wantErr: true},
		{name: "bad day", input: "x-1", wantErr: true},
		{name: "bad period", input: "1-y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseTimeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimetableUnmarshalLegacySlots(t *testing.T) {
	data := `{
		"1-1": {
			"0-0": [{"subjectId": "math", "teacherIds": ["t1"], "specialClassroomIds": null}],
			"0-1": {"subjectId": "pe", "teacherIds": ["t2"], "specialClassroomIds": ["gym"]},
			"0-2": null,
			"0-3": [],
			"1-0": [{"subjectId": "sci", "teacherIds": ["t3"], "specialClassroomIds": []}]
		}
	}`

	var timetable Timetable
	if err := json.Unmarshal([]byte(data), &timetable); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	slots := timetable["1-1"]
	tests := []struct {
		key  TimeKey
		want []Lesson
	}{
		{key: TimeKey{0, 0}, want: []Lesson{{SubjectID: "math", TeacherIDs: []string{"t1"}}}},
		{key: TimeKey{0, 1}, want: []Lesson{{SubjectID: "pe", TeacherIDs: []string{"t2"}, SpecialClassroomIDs: []string{"gym"}}}},
		{key: TimeKey{0, 2}, want: []Lesson{}},
		{key: TimeKey{0, 3}, want: []Lesson{}},
		{key: TimeKey{1, 0}, want: []Lesson{{SubjectID: "sci", TeacherIDs: []string{"t3"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got, ok := slots[tt.key]
			if !ok {
				t.Fatalf("slot %s missing", tt.key)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("slot %s = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}
}

func TestTimetableUnmarshalRejectsScalars(t *testing.T) {
	var timetable Timetable
	if err := json.Unmarshal([]byte(`{"1-1": {"0-0": 42}}`), &timetable); err == nil {
		t.Error("expected error for a scalar slot value")
	}
	if err := json.Unmarshal([]byte(`{"1-1": {"monday": []}}`), &timetable); err == nil {
		t.Error("expected error for a malformed time key")
	}
}

func TestTimetableMarshalUsesListsAndNullRooms(t *testing.T) {
	timetable := Timetable{
		"1-1": ClassSlots{
			{Day: 0, Period: 1}: {{SubjectID: "math", TeacherIDs: []string{"t1"}}},
		},
	}

	encoded, err := json.Marshal(timetable)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	want := `{"1-1":{"0-1":[{"subjectId":"math","teacherIds":["t1"],"specialClassroomIds":null}]}}`
	if string(encoded) != want {
		t.Errorf("json.Marshal() = %s, want %s", encoded, want)
	}
}

func TestLessonClone(t *testing.T) {
	original := Lesson{SubjectID: "pe", TeacherIDs: []string{"t1"}, SpecialClassroomIDs: []string{"gym"}}
	clone := original.Clone()
	clone.TeacherIDs[0] = "t9"
	clone.SpecialClassroomIDs[0] = "lab"

	if original.TeacherIDs[0] != "t1" || original.SpecialClassroomIDs[0] != "gym" {
		t.Errorf("Clone() shares slices with the original: %+v", original)
	}
	if !original.HasTeacher("t1") || original.HasTeacher("t9") {
		t.Error("HasTeacher() mismatch")
	}
	if !original.UsesRoom("gym") || original.UsesRoom("lab") {
		t.Error("UsesRoom() mismatch")
	}
}

func TestTTTypeMarshal(t *testing.T) {
	tests := []struct {
		typ  TTType
		want string
	}{
		{typ: TTNone, want: "null"},
		{typ: TTSameClass, want: `"same_class"`},
		{typ: TTSameTeacher, want: `"same_teacher"`},
		{typ: TTBoth, want: `"both"`},
	}

	for _, tt := range tests {
		encoded, err := json.Marshal(tt.typ)
		if err != nil {
			t.Fatalf("json.Marshal(%q) error = %v", tt.typ, err)
		}
		if string(encoded) != tt.want {
			t.Errorf("json.Marshal(%q) = %s, want %s", tt.typ, encoded, tt.want)
		}
	}
}
