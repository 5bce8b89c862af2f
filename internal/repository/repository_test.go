package repository

import (
	"path/filepath"
	"reflect"
	"testing"

	"schooltimetable/internal/database"
	"schooltimetable/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func sampleTimetable() models.Timetable {
	return models.Timetable{
		"1-1": {
			{Day: 0, Period: 0}: {
				{SubjectID: "pe", TeacherIDs: []string{"t1"}, SpecialClassroomIDs: []string{"gym"}},
				{SubjectID: "music", TeacherIDs: []string{"t2", "t3"}},
			},
			{Day: 2, Period: 5}: {
				{SubjectID: "math", TeacherIDs: []string{"t1"}},
			},
		},
		"2-1": {
			{Day: 0, Period: 0}: {
				{SubjectID: "pe", TeacherIDs: []string{"t1"}, SpecialClassroomIDs: []string{"gym"}},
			},
		},
	}
}

func TestTimetableRepositoryRoundTrip(t *testing.T) {
	repo := NewTimetableRepository(openTestDB(t))

	want := sampleTimetable()
	if err := repo.ReplaceAll(want); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadAll() = %#v\nwant %#v", got, want)
	}

	count, err := repo.CountLessons()
	if err != nil {
		t.Fatalf("CountLessons() error = %v", err)
	}
	if count != 4 {
		t.Errorf("CountLessons() = %d, want 4", count)
	}
}

func TestTimetableRepositoryReplaceOverwrites(t *testing.T) {
	repo := NewTimetableRepository(openTestDB(t))

	if err := repo.ReplaceAll(sampleTimetable()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	next := models.Timetable{
		"1-2": {{Day: 1, Period: 1}: {{SubjectID: "sci", TeacherIDs: []string{"t4"}}}},
		// slots without lessons have no rows
		"1-1": {{Day: 0, Period: 0}: {}},
	}
	if err := repo.ReplaceAll(next); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	want := models.Timetable{
		"1-2": {{Day: 1, Period: 1}: {{SubjectID: "sci", TeacherIDs: []string{"t4"}}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadAll() = %#v, want %#v", got, want)
	}
}

func TestTimetableRepositoryEmpty(t *testing.T) {
	repo := NewTimetableRepository(openTestDB(t))

	got, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadAll() on empty table = %v, want empty", got)
	}
}

func TestRuleSettingsRepository(t *testing.T) {
	repo := NewRuleSettingsRepository(openTestDB(t))

	limit := 5
	if err := repo.Save(models.RuleSetting{RuleID: "teacher_daily_load", Enabled: true, Threshold: &limit}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(models.RuleSetting{RuleID: "empty_slots", Enabled: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// upsert
	if err := repo.Save(models.RuleSetting{RuleID: "empty_slots", Enabled: false}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	settings, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("len(GetAll()) = %d, want 2", len(settings))
	}

	if settings[0].RuleID != "empty_slots" || settings[0].Enabled || settings[0].Threshold != nil {
		t.Errorf("settings[0] = %+v, want disabled empty_slots without threshold", settings[0])
	}
	if settings[1].RuleID != "teacher_daily_load" || !settings[1].Enabled || settings[1].Threshold == nil || *settings[1].Threshold != 5 {
		t.Errorf("settings[1] = %+v, want enabled teacher_daily_load with threshold 5", settings[1])
	}
}
