package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"schooltimetable/internal/database"
	"schooltimetable/internal/models"
)

// TimetableRepository stores timetable lessons, one row per lesson
type TimetableRepository struct {
	db *database.DB
}

// NewTimetableRepository creates a new timetable repository
func NewTimetableRepository(db *database.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// LoadAll reads the whole timetable. Lessons of a slot keep their position order.
func (r *TimetableRepository) LoadAll() (models.Timetable, error) {
	query := `
		SELECT class_id, day, period, subject_id, teacher_ids, room_ids
		FROM timetable_lessons
		ORDER BY class_id, day, period, position
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	timetable := make(models.Timetable)
	for rows.Next() {
		var (
			classID    string
			key        models.TimeKey
			subjectID  string
			teacherIDs string
			roomIDs    sql.NullString
		)
		if err := rows.Scan(&classID, &key.Day, &key.Period, &subjectID, &teacherIDs, &roomIDs); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}

		lesson, err := decodeLessonRow(subjectID, teacherIDs, roomIDs)
		if err != nil {
			return nil, fmt.Errorf("class %s slot %s: %w", classID, key, err)
		}

		slots, ok := timetable[classID]
		if !ok {
			slots = make(models.ClassSlots)
			timetable[classID] = slots
		}
		slots[key] = append(slots[key], lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}

	return timetable, nil
}

// ReplaceAll overwrites the stored timetable with the given one in a single transaction
func (r *TimetableRepository) ReplaceAll(timetable models.Timetable) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("DELETE FROM timetable_lessons"); err != nil {
			return fmt.Errorf("failed to clear lessons: %w", err)
		}

		insert := `
			INSERT INTO timetable_lessons (class_id, day, period, position, subject_id, teacher_ids, room_ids)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		for _, classID := range sortedClassIDs(timetable) {
			slots := timetable[classID]
			for _, key := range sortedKeys(slots) {
				for position, lesson := range slots[key] {
					teacherIDs, roomIDs, err := encodeLessonRow(lesson)
					if err != nil {
						return err
					}
					if _, err := tx.Exec(insert, classID, key.Day, key.Period, position, lesson.SubjectID, teacherIDs, roomIDs); err != nil {
						return fmt.Errorf("failed to insert lesson %s/%s: %w", classID, key, err)
					}
				}
			}
		}
		return nil
	})
}

// CountLessons returns the number of stored lessons
func (r *TimetableRepository) CountLessons() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM timetable_lessons").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

func encodeLessonRow(lesson models.Lesson) (string, sql.NullString, error) {
	teachers, err := json.Marshal(lesson.TeacherIDs)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("failed to encode teacher ids: %w", err)
	}

	var rooms sql.NullString
	if len(lesson.SpecialClassroomIDs) > 0 {
		encoded, err := json.Marshal(lesson.SpecialClassroomIDs)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("failed to encode room ids: %w", err)
		}
		rooms = sql.NullString{String: string(encoded), Valid: true}
	}

	return string(teachers), rooms, nil
}

func decodeLessonRow(subjectID, teacherIDs string, roomIDs sql.NullString) (models.Lesson, error) {
	lesson := models.Lesson{SubjectID: subjectID}
	if err := json.Unmarshal([]byte(teacherIDs), &lesson.TeacherIDs); err != nil {
		return models.Lesson{}, fmt.Errorf("failed to decode teacher ids: %w", err)
	}
	if roomIDs.Valid && roomIDs.String != "" {
		if err := json.Unmarshal([]byte(roomIDs.String), &lesson.SpecialClassroomIDs); err != nil {
			return models.Lesson{}, fmt.Errorf("failed to decode room ids: %w", err)
		}
	}
	if len(lesson.SpecialClassroomIDs) == 0 {
		lesson.SpecialClassroomIDs = nil
	}
	return lesson, nil
}

func sortedClassIDs(timetable models.Timetable) []string {
	ids := make([]string, 0, len(timetable))
	for id := range timetable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(slots models.ClassSlots) []models.TimeKey {
	keys := make([]models.TimeKey, 0, len(slots))
	for key := range slots {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Period < keys[j].Period
	})
	return keys
}
