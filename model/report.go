package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ReportCategory string

// Closed category enumeration, codes kept short for storage.
const (
	CategorySpam                 ReportCategory = "SPM"
	CategorySexual               ReportCategory = "SEX"
	CategoryHate                 ReportCategory = "HAT"
	CategoryViolence             ReportCategory = "VIO"
	CategoryIllegalGoods         ReportCategory = "IGL"
	CategoryBullying             ReportCategory = "BUL"
	CategoryIntellectualProperty ReportCategory = "INP"
	CategorySelfInjury           ReportCategory = "INJ"
	CategoryScam                 ReportCategory = "SCM"
	CategoryFalseInfo            ReportCategory = "FLS"
)

// CategoryDisplayNames maps category codes to user-facing labels.
var CategoryDisplayNames = map[ReportCategory]string{
	CategorySpam:                 "Spam",
	CategorySexual:               "Nudity or sexual activity",
	CategoryHate:                 "Hate speech or symbols",
	CategoryViolence:             "Violence or dangerous organisations",
	CategoryIllegalGoods:         "Sale of illegal or regulated goods",
	CategoryBullying:             "Bullying or harassment",
	CategoryIntellectualProperty: "Intellectual property violation or impersonation",
	CategorySelfInjury:           "Suicide or self-injury",
	CategoryScam:                 "Scam or fraud",
	CategoryFalseInfo:            "False or misleading information",
}

func (c ReportCategory) Valid() bool {
	_, ok := CategoryDisplayNames[c]
	return ok
}

type ReportStatus string

const (
	ReportStatusInProgress ReportStatus = "PR"
	ReportStatusRejected   ReportStatus = "RE"
	ReportStatusConfirmed  ReportStatus = "CM"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusInProgress, ReportStatusRejected, ReportStatusConfirmed:
		return true
	}
	return false
}

/*

Report is an accusation against a piece of content or a profile

Id: primary key
CreatedAt: time when entity is created

ReporterID: profile that filed the report
TargetType + TargetID: tagged reference to the reported object
Reason: free-text justification
Category: closed enumeration, see CategoryDisplayNames
Status: PR (in progress), RE (rejected) or CM (confirmed)
AssignedModeratorID: staff member handling this report, chosen at random
among eligible moderators at filing time

*/

type Report struct {
	Id                  string `gorm:"primaryKey"`
	CreatedAt           time.Time
	ReporterID          string      `gorm:"index"`
	Reporter            *Profile    `gorm:"foreignKey:ReporterID"`
	TargetType          ContentType `gorm:"index:idx_report_target"`
	TargetID            string      `gorm:"index:idx_report_target"`
	Reason              string
	Category            ReportCategory
	Status              ReportStatus `gorm:"default:PR"`
	AssignedModeratorID string       `gorm:"index"`
	AssignedModerator   *Profile     `gorm:"foreignKey:AssignedModeratorID"`
}

func (r *Report) BeforeCreate(db *gorm.DB) error {
	if r.Id == "" {
		r.Id = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = ReportStatusInProgress
	}
	if !r.Category.Valid() {
		return errors.Errorf("invalid report category %q", r.Category)
	}
	if !r.Status.Valid() {
		return errors.Errorf("invalid report status %q", r.Status)
	}
	return nil
}
