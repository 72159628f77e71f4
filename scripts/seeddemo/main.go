package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/models"
)

type seedCase struct {
	Plaintiff    models.Party `yaml:"plaintiff"`
	Defendant    models.Party `yaml:"defendant"`
	Title        string       `yaml:"title"`
	Summary      string       `yaml:"summary"`
	Relationship string       `yaml:"relationship"`
	FilesCount   int          `yaml:"filesCount"`
	AgeHours     int          `yaml:"ageHours"`
}

// Loads demo cases into mongo. Their lifecycle stage is derived from the case
// id, so the explore feed shows every stage without a running scheduler.
// Usage: go run ./scripts/seeddemo -file scripts/seeddemo/cases.yaml
func main() {
	file := flag.String("file", "scripts/seeddemo/cases.yaml", "yaml file holding the demo cases")
	firstID := flag.Int("first-id", 900000, "numeric part of the first case id")
	flag.Parse()

	conf := config.New()
	if err := run(conf, *file, *firstID); err != nil {
		zap.S().Errorw("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(conf *config.Config, file string, firstID int) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var seeds []seedCase
	if err := yaml.Unmarshal(b, &seeds); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := databases.NewClient(conf)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	cases := databases.NewCaseDatabase(databases.NewDatabase(conf, client))

	now := time.Now().UTC()
	inserted := 0
	for i, s := range seeds {
		created := now.Add(-time.Duration(s.AgeHours) * time.Hour)
		typ := models.CaseTypeFor(s.FilesCount)
		c := models.Case{
			CaseID:           fmt.Sprintf("%s%06d", typ.Prefix(), firstID+i),
			Type:             typ,
			Plaintiff:        s.Plaintiff,
			Defendant:        s.Defendant,
			Title:            s.Title,
			Summary:          s.Summary,
			Relationship:     s.Relationship,
			FilesCount:       s.FilesCount,
			CreatedAt:        created,
			UpdatedAt:        created,
			IsDemoRandomized: true,
			Source:           models.SourceSeed,
		}
		err := cases.InsertOne(ctx, &c)
		if errors.Is(err, databases.ErrDuplicate) {
			zap.S().Infow("demo case already seeded", "caseId", c.CaseID)
			continue
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", c.CaseID, err)
		}
		inserted++
	}
	zap.S().Infow("demo cases seeded", "inserted", inserted, "total", len(seeds))
	return nil
}
