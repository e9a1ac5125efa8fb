package moderation

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
	"github.com/pulsifi-app/pulsifi-backend/privilege"
	"github.com/pulsifi-app/pulsifi-backend/utils"
	"github.com/pulsifi-app/pulsifi-backend/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func createTestProfile(t *testing.T, db *gorm.DB, username string) *model.Profile {
	t.Helper()
	profile := model.Profile{Username: username, Email: username + "@example.com", Active: true}
	require.Nil(t, db.Create(&profile).Error)
	return &profile
}

func createTestModerator(t *testing.T, db *gorm.DB, username string) *model.Profile {
	t.Helper()
	profile := createTestProfile(t, db, username)
	require.Nil(t, privilege.AddToGroup(db, profile.Id, model.GroupModerators))
	return profile
}

func setupModerationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	require.Nil(t, privilege.EnsureDefaultGroups(db))
	return db
}

func TestFileReportAssignsAnEligibleModerator(t *testing.T) {
	db := setupModerationDB(t)
	mod1 := createTestModerator(t, db, "mod1")
	mod2 := createTestModerator(t, db, "mod2")
	reporter := createTestProfile(t, db, "reporter")
	author := createTestProfile(t, db, "author")

	pulse := model.Pulse{CreatorID: author.Id, Message: "spam spam spam", Visible: true}
	require.Nil(t, db.Create(&pulse).Error)

	report, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     pulse.Ref(),
		Reason:     "unsolicited advertising",
		Category:   model.CategorySpam,
	})
	require.Nil(t, err)
	assert.Equal(t, model.ReportStatusInProgress, report.Status)
	assert.Contains(t, []string{mod1.Id, mod2.Id}, report.AssignedModeratorID)

	var stored model.Report
	require.Nil(t, db.Where("id = ?", report.Id).First(&stored).Error)
	assert.Equal(t, pulse.Id, stored.TargetID)
	assert.Equal(t, model.ContentTypePulse, stored.TargetType)
}

func TestFileReportWithoutModeratorsFails(t *testing.T) {
	db := setupModerationDB(t)
	reporter := createTestProfile(t, db, "reporter")
	author := createTestProfile(t, db, "author")
	pulse := model.Pulse{CreatorID: author.Id, Message: "anything", Visible: true}
	require.Nil(t, db.Create(&pulse).Error)

	_, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     pulse.Ref(),
		Reason:     "bad",
		Category:   model.CategoryHate,
	})
	assert.ErrorIs(t, err, ErrNoEligibleModerator)

	// nothing persisted
	var count int64
	require.Nil(t, db.Model(&model.Report{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestInactiveModeratorIsNotEligible(t *testing.T) {
	db := setupModerationDB(t)
	mod := createTestModerator(t, db, "retiredmod")
	require.Nil(t, db.Model(&model.Profile{}).Where("id = ?", mod.Id).
		UpdateColumn("active", false).Error)

	ids, err := EligibleModeratorIDs(db)
	require.Nil(t, err)
	assert.Empty(t, ids)
}

func TestFileReportAgainstMissingTargetFails(t *testing.T) {
	db := setupModerationDB(t)
	createTestModerator(t, db, "mod")
	reporter := createTestProfile(t, db, "reporter")

	_, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     model.ContentRef{Type: model.ContentTypePulse, ID: "gone"},
		Reason:     "bad",
		Category:   model.CategorySpam,
	})
	assert.ErrorIs(t, err, model.ErrBrokenParentReference)
}

func TestFileReportAgainstProfile(t *testing.T) {
	db := setupModerationDB(t)
	createTestModerator(t, db, "mod")
	reporter := createTestProfile(t, db, "reporter")
	offender := createTestProfile(t, db, "offender")

	report, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     model.ContentRef{Type: model.ContentTypeProfile, ID: offender.Id},
		Reason:     "impersonation",
		Category:   model.CategoryIntellectualProperty,
	})
	require.Nil(t, err)
	assert.Equal(t, model.ContentTypeProfile, report.TargetType)
}

func TestInvalidCategoryIsRejected(t *testing.T) {
	db := setupModerationDB(t)
	createTestModerator(t, db, "mod")
	reporter := createTestProfile(t, db, "reporter")

	_, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     model.ContentRef{Type: model.ContentTypeProfile, ID: reporter.Id},
		Reason:     "??",
		Category:   model.ReportCategory("XYZ"),
	})
	assert.NotNil(t, err)
}

func TestUpdateReportStatus(t *testing.T) {
	db := setupModerationDB(t)
	createTestModerator(t, db, "mod")
	reporter := createTestProfile(t, db, "reporter")

	report, err := FileReport(db, ReportInput{
		ReporterID: reporter.Id,
		Target:     model.ContentRef{Type: model.ContentTypeProfile, ID: reporter.Id},
		Reason:     "self report",
		Category:   model.CategoryScam,
	})
	require.Nil(t, err)

	require.Nil(t, UpdateReportStatus(db, report.Id, model.ReportStatusConfirmed))
	var stored model.Report
	require.Nil(t, db.Where("id = ?", report.Id).First(&stored).Error)
	assert.Equal(t, model.ReportStatusConfirmed, stored.Status)

	assert.NotNil(t, UpdateReportStatus(db, report.Id, model.ReportStatus("ZZ")))
	assert.NotNil(t, UpdateReportStatus(db, "missing", model.ReportStatusConfirmed))
}
