package database

import (
	"strings"
	"testing"

	"schooltimetable/internal/config"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM timetable_lessons WHERE class_id = ?",
			expected: "SELECT * FROM timetable_lessons WHERE class_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM timetable_lessons WHERE class_id = ?",
			expected: "SELECT * FROM timetable_lessons WHERE class_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO rule_settings (rule_id, enabled) VALUES (?, ?)",
			expected: "INSERT INTO rule_settings (rule_id, enabled) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE timetable_lessons SET subject_id = ?, teacher_ids = ? WHERE id = ?",
			expected: "UPDATE timetable_lessons SET subject_id = ?, teacher_ids = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsertRuleSettingQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		contains string
	}{
		{name: "SQLite", dialect: NewSQLiteDialect(), contains: "ON CONFLICT(rule_id)"},
		{name: "PostgreSQL", dialect: NewPostgresDialect(), contains: "ON CONFLICT (rule_id)"},
		{name: "MySQL", dialect: NewMySQLDialect(), contains: "ON DUPLICATE KEY UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := tt.dialect.UpsertRuleSettingQuery()
			if !strings.Contains(query, tt.contains) {
				t.Errorf("UpsertRuleSettingQuery() = %q, want it to contain %q", query, tt.contains)
			}
			if got := strings.Count(query, "?"); got != 3 {
				t.Errorf("UpsertRuleSettingQuery() has %d placeholders, want 3", got)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dbType     string
		wantDriver string
		wantErr    bool
	}{
		{dbType: "", wantDriver: "sqlite3"},
		{dbType: "SQLite", wantDriver: "sqlite3"},
		{dbType: "postgresql", wantDriver: "postgres"},
		{dbType: "mysql", wantDriver: "mysql"},
		{dbType: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			dialect, _, err := dialectFor(&config.Config{DatabaseType: tt.dbType})
			if (err != nil) != tt.wantErr {
				t.Fatalf("dialectFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && dialect.DriverName() != tt.wantDriver {
				t.Errorf("DriverName() = %v, want %v", dialect.DriverName(), tt.wantDriver)
			}
		})
	}
}
