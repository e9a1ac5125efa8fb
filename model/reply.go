package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

/*

Reply is a data model for content attached to a parent, forming a tree rooted
at a pulse

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

CreatorID: profile that authored this reply
Message: reply body
Visible: visibility flag, cascaded from the original pulse
ParentType + ParentID: tagged reference to the direct parent (pulse or reply)
OriginalPulseID: the pulse at the top of the ancestor chain, resolved once at
creation and immutable afterwards
LikedBy / DislikedBy: reaction sets, "many-to-many" relations

*/

type Reply struct {
	Id              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	DeletedAt       gorm.DeletedAt
	CreatorID       string   `gorm:"index"`
	Creator         *Profile `gorm:"foreignKey:CreatorID"`
	Message         string
	Visible         bool        `gorm:"default:TRUE"`
	ParentType      ContentType `gorm:"index:idx_reply_parent"`
	ParentID        string      `gorm:"index:idx_reply_parent"`
	OriginalPulseID string      `gorm:"index"`
	OriginalPulse   *Pulse      `gorm:"foreignKey:OriginalPulseID"`
	LikedBy         []*Profile  `json:"liked_by" gorm:"many2many:reply_likes;"`
	DislikedBy      []*Profile  `json:"disliked_by" gorm:"many2many:reply_dislikes;"`
}

// BeforeCreate pins the reply to its original pulse. Resolution happens
// exactly once: the cached reference is trusted thereafter even if ancestors
// are mutated. A reply created under an already-hidden root is born hidden.
func (r *Reply) BeforeCreate(db *gorm.DB) error {
	if r.Id == "" {
		r.Id = uuid.New().String()
	}
	if r.ParentType != ContentTypePulse && r.ParentType != ContentTypeReply {
		return errors.Wrapf(ErrBrokenParentReference, "reply parent cannot be %q", r.ParentType)
	}

	if r.OriginalPulseID == "" {
		original, err := ResolveOriginalPulse(db, ContentRef{Type: r.ParentType, ID: r.ParentID})
		if err != nil {
			return err
		}
		r.OriginalPulseID = original.Id
		if !original.Visible {
			r.bornHidden(db)
		}
		return nil
	}

	var original Pulse
	if err := db.Select("id", "visible").Where("id = ?", r.OriginalPulseID).First(&original).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(ErrBrokenParentReference, "original pulse %s", r.OriginalPulseID)
		}
		return err
	}
	if !original.Visible {
		r.bornHidden(db)
	}
	return nil
}

// bornHidden forces Visible=false into the pending INSERT. Assigning the
// field alone is not enough: gorm omits zero-valued fields that carry a
// `default` tag, so the column would fall back to the DB default TRUE.
func (r *Reply) bornHidden(db *gorm.DB) {
	r.Visible = false
	db.Statement.SetColumn("visible", false)
}

func (r *Reply) Ref() ContentRef {
	return ContentRef{Type: ContentTypeReply, ID: r.Id}
}

// ResolveOriginalPulse walks parent references up to the root pulse. The walk
// is iterative so reply trees of arbitrary depth resolve without exhausting
// the stack, and it short-circuits through an ancestor's cached original
// pulse when one is present. A dangling reference at any step is a
// data-integrity error, not a nil result.
func ResolveOriginalPulse(db *gorm.DB, ref ContentRef) (*Pulse, error) {
	for {
		switch ref.Type {
		case ContentTypePulse:
			var pulse Pulse
			if err := db.Where("id = ?", ref.ID).First(&pulse).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.Wrapf(ErrBrokenParentReference, "pulse %s", ref.ID)
				}
				return nil, err
			}
			return &pulse, nil

		case ContentTypeReply:
			var parent Reply
			if err := db.Select("id", "parent_type", "parent_id", "original_pulse_id").
				Where("id = ?", ref.ID).First(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.Wrapf(ErrBrokenParentReference, "reply %s", ref.ID)
				}
				return nil, err
			}
			if parent.OriginalPulseID != "" {
				ref = ContentRef{Type: ContentTypePulse, ID: parent.OriginalPulseID}
				continue
			}
			ref = ContentRef{Type: parent.ParentType, ID: parent.ParentID}

		default:
			return nil, errors.Wrapf(ErrBrokenParentReference, "cannot resolve through %q", ref.Type)
		}
	}
}
