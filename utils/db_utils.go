package utils

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
)

// GetDBConnection connects to the Postgres instance configured through the
// environment.
func GetDBConnection() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// DBSetupAndMigration registers the custom join tables and migrates the
// schema. Join-table registration must happen before any association write,
// otherwise the reaction/membership hooks are skipped for association-side
// mutations.
func DBSetupAndMigration(db *gorm.DB) error {
	if err := registerJoinTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.Profile{},
		&model.Group{},
		&model.Pulse{},
		&model.Reply{},
		&model.Report{},
	)
}

// CreateTempDB hands every test its own throwaway in-memory database with
// the full schema, named after the test for debuggability.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()

	name := fmt.Sprintf("%s_%s", t.Name(), uuid.New().String())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create temp db: %v", err)
	}
	if err := DBSetupAndMigration(db); err != nil {
		t.Fatalf("failed to migrate temp db: %v", err)
	}
	return db, name
}

func registerJoinTables(db *gorm.DB) error {
	joins := []struct {
		owner interface{}
		field string
		table interface{}
	}{
		{&model.Profile{}, "Groups", &model.GroupMembership{}},
		{&model.Profile{}, "Following", &model.ProfileFollow{}},
		{&model.Pulse{}, "LikedBy", &model.PulseLike{}},
		{&model.Pulse{}, "DislikedBy", &model.PulseDislike{}},
		{&model.Reply{}, "LikedBy", &model.ReplyLike{}},
		{&model.Reply{}, "DislikedBy", &model.ReplyDislike{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.owner, j.field, j.table); err != nil {
			return err
		}
	}
	return nil
}
