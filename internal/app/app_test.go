package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"schooltimetable/internal/config"
	"schooltimetable/internal/validation"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	return &config.Config{
		DatabaseType:      "sqlite",
		DatabasePath:      filepath.Join(t.TempDir(), "app.db"),
		MigrationsPath:    "../../migrations",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

func TestAppPersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	handler := first.Handler()

	req := httptest.NewRequest("PUT", "/api/slots/1-1/0/0", strings.NewReader(`{"subjectId":"math","teacherIds":["t1"]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("PUT", "/api/validation/rules/"+validation.RuleEmptySlots, strings.NewReader(`{"enabled":false}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rule PUT status = %d, body %s", rec.Code, rec.Body.String())
	}
	first.Close()

	second, err := New(cfg)
	if err != nil {
		t.Fatalf("New() after restart error = %v", err)
	}
	defer second.Close()

	if got := second.Slots.GetSlot("1-1", 0, 0); len(got) != 1 || got[0].SubjectID != "math" {
		t.Errorf("slot after restart = %+v", got)
	}
	for _, rule := range second.Engine.GetRules() {
		if rule.ID == validation.RuleEmptySlots && rule.Enabled {
			t.Error("rule setting was not restored")
		}
	}
}

func TestAppLoadsSchoolFile(t *testing.T) {
	cfg := testConfig(t)
	school := config.School{
		Name:    "File School",
		Classes: []config.Class{{ID: "x", Name: "X"}},
		Days:    []string{"Mon"},
		Periods: 2,
	}
	content, _ := json.Marshal(school)
	cfg.SchoolConfigPath = filepath.Join(t.TempDir(), "school.json")
	if err := os.WriteFile(cfg.SchoolConfigPath, content, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.School.Name != "File School" || !a.School.HasClass("x") {
		t.Errorf("School = %+v", a.School)
	}
}

func TestAppRejectsBadSchoolFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchoolConfigPath = filepath.Join(t.TempDir(), "missing.json")

	if _, err := New(cfg); err == nil {
		t.Fatal("New() error = nil, want error for missing school file")
	}
}
