package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group names that imply elevated access.
const (
	GroupModerators = "Moderators"
	GroupAdmins     = "Admins"
)

// PrivilegedGroupNames is the set of group names whose membership implies
// the staff flag.
var PrivilegedGroupNames = []string{GroupModerators, GroupAdmins}

func IsPrivilegedGroup(name string) bool {
	for _, n := range PrivilegedGroupNames {
		if n == name {
			return true
		}
	}
	return false
}

/*

Group is a named collection of profiles used for access control

Id: primary key
Name: unique group name, e.g. "Moderators" or "Admins"

*/

type Group struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string `gorm:"uniqueIndex"`
}

func (g *Group) BeforeCreate(db *gorm.DB) error {
	if g.Id == "" {
		g.Id = uuid.New().String()
	}
	return nil
}

/*

GroupMembership is a "many-to-many" relation of a profile belonging to a group

ProfileID: profile id
GroupID: group id
CreatedAt: time when relation is created

*/

type GroupMembership struct {
	ProfileID string `gorm:"primaryKey"`
	GroupID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Membership writes re-derive the member's privilege flags inside the same
// transaction, so both the profile-initiated and the group-initiated add
// paths end in the same state.
func (m *GroupMembership) AfterCreate(db *gorm.DB) error {
	return SyncProfilePrivileges(db, m.ProfileID)
}

// SyncProfilePrivileges re-derives IsStaff and IsSuperuser from the profile's
// current group memberships: any privileged group grants staff, the Admins
// group grants superuser, losing the last privileged membership revokes
// staff unless superuser still holds. The flag writes are raw column updates
// and do not re-enter any hook pipeline.
func SyncProfilePrivileges(db *gorm.DB, profileID string) error {
	var names []string
	if err := db.Model(&GroupMembership{}).
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("group_memberships.profile_id = ?", profileID).
		Pluck("groups.name", &names).Error; err != nil {
		return err
	}

	staff, superuser := false, false
	for _, name := range names {
		if IsPrivilegedGroup(name) {
			staff = true
		}
		if name == GroupAdmins {
			superuser = true
		}
	}
	if superuser {
		staff = true
	}

	return db.Model(&Profile{}).Where("id = ?", profileID).
		UpdateColumns(map[string]interface{}{"is_staff": staff, "is_superuser": superuser}).Error
}
