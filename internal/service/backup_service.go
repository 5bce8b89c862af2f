package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"schooltimetable/internal/config"
	"schooltimetable/internal/models"
)

const backupVersion = "1.0"

// BackupData is the JSON document written by Export and read by Import
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	SnapshotID string           `json:"snapshotId"`
	School     *config.School   `json:"school,omitempty"`
	Timetable  models.Timetable `json:"timetable"`
}

// BackupService exports and restores the timetable
type BackupService struct {
	store  *PersistentStore
	school *config.School
}

// NewBackupService creates a new backup service
func NewBackupService(store *PersistentStore, school *config.School) *BackupService {
	return &BackupService{store: store, school: school}
}

// Export writes a backup of the current timetable to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting timetable export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Timetable exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a backup of the current timetable to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
		SnapshotID: uuid.New().String(),
		School:     s.school,
		Timetable:  s.store.Timetable(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported snapshot %s: %d classes, %d lessons", backup.SnapshotID, len(backup.Timetable), countLessons(backup.Timetable))
	return nil
}

// Import restores a timetable from a backup file. With clear set the stored
// timetable is replaced, otherwise imported slots overwrite matching slots.
func (s *BackupService) Import(inputPath string, clear bool) error {
	log.Printf("Starting timetable import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, clear)
}

// ImportFromReader restores a timetable from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader, clear bool) error {
	backup, err := DecodeBackup(reader)
	if err != nil {
		return err
	}

	log.Printf("Backup version: %s, snapshot: %s, exported at: %s", backup.Version, backup.SnapshotID, backup.ExportedAt)
	s.warnUnknownClasses(backup.Timetable)

	if clear {
		err = s.store.Replace(backup.Timetable)
	} else {
		err = s.store.Merge(backup.Timetable)
	}
	if err != nil {
		return fmt.Errorf("failed to store imported timetable: %w", err)
	}

	log.Printf("Timetable import completed: %d classes, %d lessons", len(backup.Timetable), countLessons(backup.Timetable))
	return nil
}

// DecodeBackup reads a backup document. A bare timetable object (no
// envelope) is accepted as well, as are legacy single-lesson slots.
func DecodeBackup(reader io.Reader) (*BackupData, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	var backup BackupData
	if _, ok := fields["timetable"]; ok {
		if err := json.Unmarshal(content, &backup); err != nil {
			return nil, fmt.Errorf("failed to decode backup: %w", err)
		}
	} else {
		if err := json.Unmarshal(content, &backup.Timetable); err != nil {
			return nil, fmt.Errorf("failed to decode timetable: %w", err)
		}
		backup.Version = "legacy"
	}

	if backup.Timetable == nil {
		backup.Timetable = make(models.Timetable)
	}
	return &backup, nil
}

func (s *BackupService) warnUnknownClasses(timetable models.Timetable) {
	if s.school == nil {
		return
	}
	for classID := range timetable {
		if !s.school.HasClass(classID) {
			log.Printf("Warning: backup contains class %s which is not in the school config", classID)
		}
	}
}

func countLessons(timetable models.Timetable) int {
	total := 0
	for _, slots := range timetable {
		for _, lessons := range slots {
			total += len(lessons)
		}
	}
	return total
}
