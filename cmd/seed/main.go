package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/irah1999/cloud-flair/internal/config"
	"github.com/irah1999/cloud-flair/internal/database"
	"github.com/irah1999/cloud-flair/internal/models"
	"github.com/irah1999/cloud-flair/internal/repositories"
)

type seedFile struct {
	Interviews []seedInterview `yaml:"interviews"`
}

type seedInterview struct {
	Name      string            `yaml:"name"`
	Email     string            `yaml:"email"`
	Code      string            `yaml:"code"`
	Questions []models.Question `yaml:"questions"`
}

// parseSeed reads the YAML seed file into pending interviews.
func parseSeed(r io.Reader) ([]*models.Interview, error) {
	var file seedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	interviews := make([]*models.Interview, 0, len(file.Interviews))
	for i, entry := range file.Interviews {
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Email) == "" {
			return nil, fmt.Errorf("interview %d: name and email are required", i+1)
		}
		if entry.Questions == nil {
			entry.Questions = []models.Question{}
		}
		questions, err := json.Marshal(entry.Questions)
		if err != nil {
			return nil, fmt.Errorf("interview %d: encode questions: %w", i+1, err)
		}

		code := strings.TrimSpace(entry.Code)
		if code == "" {
			code = newInterviewCode()
		}
		interviews = append(interviews, &models.Interview{
			CandidateName:  entry.Name,
			CandidateEmail: entry.Email,
			InterviewCode:  code,
			Status:         models.StatusPending,
			QuestionsJSON:  string(questions),
		})
	}
	return interviews, nil
}

func newInterviewCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INT-" + strings.ToUpper(id[:6])
}

// seedInterviews inserts interviews whose code is not taken yet.
func seedInterviews(repo *repositories.InterviewRepository, interviews []*models.Interview, logger *zap.Logger) (int, error) {
	created := 0
	for _, iv := range interviews {
		_, err := repo.FindByCode(iv.InterviewCode)
		if err == nil {
			logger.Info("interview code already exists, skipping", zap.String("code", iv.InterviewCode))
			continue
		}
		if !errors.Is(err, repositories.ErrInterviewNotFound) {
			return created, err
		}
		if err := repo.Create(iv); err != nil {
			return created, fmt.Errorf("create interview %s: %w", iv.InterviewCode, err)
		}
		logger.Info("interview seeded",
			zap.String("code", iv.InterviewCode),
			zap.String("candidate", iv.CandidateEmail))
		created++
	}
	return created, nil
}

func main() {
	path := flag.String("file", "seed/interviews.example.yaml", "YAML file with interviews to create")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatal("Failed to open seed file", zap.String("file", *path), zap.Error(err))
	}
	defer f.Close()

	interviews, err := parseSeed(f)
	if err != nil {
		logger.Fatal("Failed to parse seed file", zap.Error(err))
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	created, err := seedInterviews(&repositories.InterviewRepository{DB: db}, interviews, logger)
	if err != nil {
		logger.Fatal("Failed to seed interviews", zap.Int("created", created), zap.Error(err))
	}
	logger.Info("Seeding finished", zap.Int("created", created), zap.Int("total", len(interviews)))
}
