// Package privilege keeps staff and superuser flags consistent with group
// membership. The derivation itself is model.SyncProfilePrivileges; this
// package owns the membership mutations and guarantees the sync runs inside
// the same transaction for both the add and the remove direction.
package privilege

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsifi-app/pulsifi-backend/model"
	Logger "github.com/pulsifi-app/pulsifi-backend/utils/log"
)

// ErrGroupNotFound is returned for membership operations on a group that was
// never provisioned.
var ErrGroupNotFound = errors.New("group not found")

// EnsureDefaultGroups provisions the privileged groups. Safe to run at every
// startup.
func EnsureDefaultGroups(db *gorm.DB) error {
	for _, name := range model.PrivilegedGroupNames {
		group := model.Group{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&group).Error; err != nil {
			return errors.Wrapf(err, "failure provisioning group %s", name)
		}
	}
	return nil
}

// AddToGroup adds a profile to the named group. The membership row's
// AfterCreate hook re-derives the member's privilege flags, so adding to a
// privileged group flips IsStaff (and, for Admins, IsSuperuser) before the
// transaction commits.
func AddToGroup(db *gorm.DB, profileID, groupName string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		group, err := findGroup(tx, groupName)
		if err != nil {
			return err
		}
		membership := model.GroupMembership{ProfileID: profileID, GroupID: group.Id}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
			return errors.Wrapf(err, "failure adding %s to %s", profileID, groupName)
		}
		Logger.LogV2.Info(fmt.Sprintf("profile %s added to group %s", profileID, groupName))
		return nil
	})
}

// RemoveFromGroup removes a profile from the named group and re-derives the
// privilege flags in the same transaction: losing the last privileged
// membership drops IsStaff, leaving Admins drops IsSuperuser.
func RemoveFromGroup(db *gorm.DB, profileID, groupName string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		group, err := findGroup(tx, groupName)
		if err != nil {
			return err
		}
		if err := tx.Where("profile_id = ? AND group_id = ?", profileID, group.Id).
			Delete(&model.GroupMembership{}).Error; err != nil {
			return errors.Wrapf(err, "failure removing %s from %s", profileID, groupName)
		}
		if err := model.SyncProfilePrivileges(tx, profileID); err != nil {
			return err
		}
		Logger.LogV2.Info(fmt.Sprintf("profile %s removed from group %s", profileID, groupName))
		return nil
	})
}

// GroupMembers lists the member profiles of the named group.
func GroupMembers(db *gorm.DB, groupName string) ([]*model.Profile, error) {
	group, err := findGroup(db, groupName)
	if err != nil {
		return nil, err
	}
	var members []*model.Profile
	err = db.Model(&model.Profile{}).
		Joins("JOIN group_memberships ON group_memberships.profile_id = profiles.id").
		Where("group_memberships.group_id = ?", group.Id).
		Find(&members).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failure listing members of %s", groupName)
	}
	return members, nil
}

func findGroup(tx *gorm.DB, name string) (*model.Group, error) {
	var group model.Group
	if err := tx.Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrGroupNotFound, "%s", name)
		}
		return nil, err
	}
	return &group, nil
}
