package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*

Pulse is a data model for a root-level post

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

CreatorID: profile that authored this pulse
Message: post body
Visible: visibility flag, user-facing "deletion" only flips this to false
LikedBy: profiles that liked this pulse, "many-to-many" relation
DislikedBy: profiles that disliked this pulse, "many-to-many" relation

*/

type Pulse struct {
	Id         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt
	CreatorID  string   `gorm:"index"`
	Creator    *Profile `gorm:"foreignKey:CreatorID"`
	Message    string
	Visible    bool       `gorm:"default:TRUE"`
	LikedBy    []*Profile `json:"liked_by" gorm:"many2many:pulse_likes;"`
	DislikedBy []*Profile `json:"disliked_by" gorm:"many2many:pulse_dislikes;"`
}

func (p *Pulse) BeforeCreate(db *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.New().String()
	}
	return nil
}

func (p *Pulse) Ref() ContentRef {
	return ContentRef{Type: ContentTypePulse, ID: p.Id}
}
