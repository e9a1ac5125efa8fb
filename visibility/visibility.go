// Package visibility implements the content visibility cascade: hiding a
// root pulse propagates invisibility to every reply in its tree, while
// restoring a root is deliberately a single-row operation.
package visibility

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
	Logger "github.com/pulsifi-app/pulsifi-backend/utils/log"
)

// ErrNotFound is returned when the pulse, reply or profile a visibility
// operation addresses does not exist.
var ErrNotFound = errors.New("not found")

// HidePulse flips a pulse invisible and cascades the flag to every reply
// whose original pulse it is. The cascading writes are raw column updates
// that bypass the hook pipeline, so the cascade cannot re-trigger itself.
// Hiding an already-hidden pulse is a no-op with the same end state.
func HidePulse(db *gorm.DB, pulseID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Pulse{}).Where("id = ?", pulseID).UpdateColumn("visible", false)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failure hiding pulse")
		}
		if result.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "pulse %s", pulseID)
		}
		return cascadeHideReplies(tx, pulseID)
	})
}

// ShowPulse restores visibility on the root only. Descendants hidden by an
// earlier cascade stay hidden until each is re-shown explicitly, the cascade
// is a one-way ratchet.
func ShowPulse(db *gorm.DB, pulseID string) error {
	result := db.Model(&model.Pulse{}).Where("id = ?", pulseID).UpdateColumn("visible", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failure showing pulse")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "pulse %s", pulseID)
	}
	return nil
}

// HideReply hides a single reply. Mid-tree replies have no cascade of their
// own, only the original pulse anchors one.
func HideReply(db *gorm.DB, replyID string) error {
	result := db.Model(&model.Reply{}).Where("id = ?", replyID).UpdateColumn("visible", false)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failure hiding reply")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "reply %s", replyID)
	}
	return nil
}

// ShowReply restores a single reply.
func ShowReply(db *gorm.DB, replyID string) error {
	result := db.Model(&model.Reply{}).Where("id = ?", replyID).UpdateColumn("visible", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failure showing reply")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "reply %s", replyID)
	}
	return nil
}

// DeactivateProfile is the soft path for account removal: the profile goes
// inactive, every pulse it authored is hidden with its full reply tree, and
// every reply it authored is hidden. Nothing is physically deleted.
func DeactivateProfile(db *gorm.DB, profileID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Profile{}).Where("id = ?", profileID).UpdateColumn("active", false)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failure deactivating profile")
		}
		if result.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "profile %s", profileID)
		}

		var pulseIDs []string
		if err := tx.Model(&model.Pulse{}).Where("creator_id = ?", profileID).
			Pluck("id", &pulseIDs).Error; err != nil {
			return err
		}
		if len(pulseIDs) > 0 {
			if err := tx.Model(&model.Pulse{}).Where("id IN ?", pulseIDs).
				UpdateColumn("visible", false).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Reply{}).Where("original_pulse_id IN ?", pulseIDs).
				UpdateColumn("visible", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&model.Reply{}).Where("creator_id = ?", profileID).
			UpdateColumn("visible", false).Error; err != nil {
			return err
		}

		Logger.LogV2.Info(fmt.Sprintf("deactivated profile %s, hid %d authored pulses", profileID, len(pulseIDs)))
		return nil
	})
}

func cascadeHideReplies(tx *gorm.DB, pulseID string) error {
	result := tx.Model(&model.Reply{}).Where("original_pulse_id = ?", pulseID).
		UpdateColumn("visible", false)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failure cascading visibility")
	}
	if result.RowsAffected > 0 {
		Logger.LogV2.Info(fmt.Sprintf("hid pulse %s and %d descendant replies", pulseID, result.RowsAffected))
	}
	return nil
}
