// Package moderation files and progresses reports against content or
// profiles. Every report is assigned to a randomly chosen eligible moderator
// at filing time.
package moderation

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
	Logger "github.com/pulsifi-app/pulsifi-backend/utils/log"
)

// ErrNoEligibleModerator signals that no staff member of the Moderators group
// exists. Report filing is disabled until one does; this is an expected
// operational condition, not a crash.
var ErrNoEligibleModerator = errors.New("no eligible moderator available")

type ReportInput struct {
	ReporterID string
	Target     model.ContentRef
	Reason     string
	Category   model.ReportCategory
}

// FileReport validates the target, picks an assignee and persists the report,
// all in one transaction.
func FileReport(db *gorm.DB, input ReportInput) (*model.Report, error) {
	var report *model.Report
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkTargetExists(tx, input.Target); err != nil {
			return err
		}
		moderatorID, err := pickRandomModerator(tx)
		if err != nil {
			return err
		}
		report = &model.Report{
			ReporterID:          input.ReporterID,
			TargetType:          input.Target.Type,
			TargetID:            input.Target.ID,
			Reason:              input.Reason,
			Category:            input.Category,
			Status:              model.ReportStatusInProgress,
			AssignedModeratorID: moderatorID,
		}
		return tx.Create(report).Error
	})
	if err != nil {
		return nil, err
	}
	Logger.LogV2.Info(fmt.Sprintf("report %s filed against %s, assigned to %s",
		report.Id, input.Target, report.AssignedModeratorID))
	return report, nil
}

// UpdateReportStatus moves a report out of the in-progress state.
func UpdateReportStatus(db *gorm.DB, reportID string, status model.ReportStatus) error {
	if !status.Valid() {
		return errors.Errorf("invalid report status %q", status)
	}
	result := db.Model(&model.Report{}).Where("id = ?", reportID).Update("status", status)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failure updating report status")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("report %s not found", reportID)
	}
	return nil
}

// EligibleModeratorIDs lists the staff members of the Moderators group.
func EligibleModeratorIDs(db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.Model(&model.Profile{}).
		Joins("JOIN group_memberships ON group_memberships.profile_id = profiles.id").
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("groups.name = ? AND profiles.is_staff = ? AND profiles.active = ?",
			model.GroupModerators, true, true).
		Pluck("profiles.id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failure querying eligible moderators")
	}
	return ids, nil
}

func pickRandomModerator(tx *gorm.DB) (string, error) {
	ids, err := EligibleModeratorIDs(tx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoEligibleModerator
	}
	return ids[rand.Intn(len(ids))], nil
}

func checkTargetExists(tx *gorm.DB, target model.ContentRef) error {
	var count int64
	var err error
	switch target.Type {
	case model.ContentTypePulse:
		err = tx.Model(&model.Pulse{}).Where("id = ?", target.ID).Count(&count).Error
	case model.ContentTypeReply:
		err = tx.Model(&model.Reply{}).Where("id = ?", target.ID).Count(&count).Error
	case model.ContentTypeProfile:
		err = tx.Model(&model.Profile{}).Where("id = ?", target.ID).Count(&count).Error
	default:
		return errors.Wrapf(model.ErrBrokenParentReference, "cannot report %q", target.Type)
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.Wrapf(model.ErrBrokenParentReference, "report target %s", target)
	}
	return nil
}
