package repository

import (
	"database/sql"
	"fmt"

	"schooltimetable/internal/database"
	"schooltimetable/internal/models"
)

// RuleSettingsRepository persists which validation rules are enabled and their thresholds
type RuleSettingsRepository struct {
	db *database.DB
}

func NewRuleSettingsRepository(db *database.DB) *RuleSettingsRepository {
	return &RuleSettingsRepository{db: db}
}

// GetAll returns every stored rule setting
func (r *RuleSettingsRepository) GetAll() ([]models.RuleSetting, error) {
	rows, err := r.db.Query("SELECT rule_id, enabled, threshold FROM rule_settings ORDER BY rule_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rule settings: %w", err)
	}
	defer rows.Close()

	var settings []models.RuleSetting
	for rows.Next() {
		var (
			setting   models.RuleSetting
			threshold sql.NullInt64
		)
		if err := rows.Scan(&setting.RuleID, &setting.Enabled, &threshold); err != nil {
			return nil, fmt.Errorf("failed to scan rule setting: %w", err)
		}
		if threshold.Valid {
			value := int(threshold.Int64)
			setting.Threshold = &value
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

// Save inserts or updates a rule setting
func (r *RuleSettingsRepository) Save(setting models.RuleSetting) error {
	var threshold sql.NullInt64
	if setting.Threshold != nil {
		threshold = sql.NullInt64{Int64: int64(*setting.Threshold), Valid: true}
	}

	if _, err := r.db.Exec(r.db.Dialect.UpsertRuleSettingQuery(), setting.RuleID, setting.Enabled, threshold); err != nil {
		return fmt.Errorf("failed to save rule setting %s: %w", setting.RuleID, err)
	}
	return nil
}
