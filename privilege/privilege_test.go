package privilege

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
	"github.com/pulsifi-app/pulsifi-backend/utils"
	"github.com/pulsifi-app/pulsifi-backend/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func setupGroupsAndProfile(t *testing.T, db *gorm.DB, username string) *model.Profile {
	t.Helper()
	require.Nil(t, EnsureDefaultGroups(db))
	profile := model.Profile{Username: username, Email: username + "@example.com", Active: true}
	require.Nil(t, db.Create(&profile).Error)
	return &profile
}

func reloadProfile(t *testing.T, db *gorm.DB, id string) *model.Profile {
	t.Helper()
	var profile model.Profile
	require.Nil(t, db.Where("id = ?", id).First(&profile).Error)
	return &profile
}

func TestEnsureDefaultGroupsIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	require.Nil(t, EnsureDefaultGroups(db))
	require.Nil(t, EnsureDefaultGroups(db))

	var count int64
	require.Nil(t, db.Model(&model.Group{}).Count(&count).Error)
	assert.Equal(t, int64(len(model.PrivilegedGroupNames)), count)
}

func TestModeratorsMembershipGrantsStaff(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "modcandidate")

	require.Nil(t, AddToGroup(db, profile.Id, model.GroupModerators))

	got := reloadProfile(t, db, profile.Id)
	assert.True(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)
}

func TestAdminsMembershipGrantsStaffAndSuperuser(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "admincandidate")

	require.Nil(t, AddToGroup(db, profile.Id, model.GroupAdmins))

	got := reloadProfile(t, db, profile.Id)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsSuperuser)
}

func TestLeavingLastPrivilegedGroupDropsFlags(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "shortlived")

	require.Nil(t, AddToGroup(db, profile.Id, model.GroupAdmins))
	require.Nil(t, RemoveFromGroup(db, profile.Id, model.GroupAdmins))

	got := reloadProfile(t, db, profile.Id)
	assert.False(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)
}

func TestLeavingAdminsKeepsStaffFromModerators(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "demoted")

	require.Nil(t, AddToGroup(db, profile.Id, model.GroupModerators))
	require.Nil(t, AddToGroup(db, profile.Id, model.GroupAdmins))
	require.Nil(t, RemoveFromGroup(db, profile.Id, model.GroupAdmins))

	got := reloadProfile(t, db, profile.Id)
	assert.True(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)
}

func TestAddingTwiceIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "repeated")

	require.Nil(t, AddToGroup(db, profile.Id, model.GroupModerators))
	require.Nil(t, AddToGroup(db, profile.Id, model.GroupModerators))

	var count int64
	require.Nil(t, db.Model(&model.GroupMembership{}).
		Where("profile_id = ?", profile.Id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.True(t, reloadProfile(t, db, profile.Id).IsStaff)
}

func TestAssociationInitiatedMembershipAlsoSyncs(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "viaassoc")

	var group model.Group
	require.Nil(t, db.Where("name = ?", model.GroupAdmins).First(&group).Error)
	require.Nil(t, db.Model(profile).Association("Groups").Append(&group))

	got := reloadProfile(t, db, profile.Id)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsSuperuser)
}

func TestNonPrivilegedGroupDoesNotGrantStaff(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "civilian")
	book := model.Group{Name: "Book Club"}
	require.Nil(t, db.Create(&book).Error)

	require.Nil(t, AddToGroup(db, profile.Id, "Book Club"))

	got := reloadProfile(t, db, profile.Id)
	assert.False(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)
}

func TestUnknownGroupIsAnError(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	profile := setupGroupsAndProfile(t, db, "lost")

	err := AddToGroup(db, profile.Id, "Nonexistent")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
