package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/irah1999/cloud-flair/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database for tests. A single
// connection keeps concurrent test writers from tripping over SQLite locks.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Interview{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SeedInterview inserts a pending interview with the given code.
func SeedInterview(t *testing.T, db *gorm.DB, code string) *models.Interview {
	t.Helper()
	iv := &models.Interview{
		CandidateName:  "Test Candidate",
		CandidateEmail: "candidate@example.com",
		InterviewCode:  code,
		Status:         models.StatusPending,
		QuestionsJSON:  `[{"id":1,"question":"2+2?","options":["3","4"],"answer":"4"}]`,
	}
	if err := db.Create(iv).Error; err != nil {
		t.Fatalf("failed to seed interview %s: %v", code, err)
	}
	return iv
}
