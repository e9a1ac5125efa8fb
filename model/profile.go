package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*

Profile is a data model for a Pulsifi user

Id: primary key, use to identify a profile
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Username: unique handle, validated against the reserved-name list
Email: contact address
Bio: free-form self description
Active: profile visibility flag, account removal sets this false
Verified: whether the profile passed identity verification
IsStaff: derived from privileged group membership, see SyncProfilePrivileges
IsSuperuser: derived from Admins group membership
Groups: groups this profile belongs to, "many-to-many" relation
Following: profiles this profile follows, asymmetric "many-to-many" relation

*/

type Profile struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Username    string `gorm:"uniqueIndex"`
	Email       string
	Bio         string
	Active      bool       `gorm:"default:TRUE"`
	Verified    bool       `gorm:"default:FALSE"`
	IsStaff     bool       `gorm:"default:FALSE"`
	IsSuperuser bool       `gorm:"default:FALSE"`
	Groups      []*Group   `json:"groups" gorm:"many2many:group_memberships;"`
	Following   []*Profile `json:"following" gorm:"many2many:profile_follows;joinForeignKey:FollowerID;joinReferences:FolloweeID"`
}

func (p *Profile) BeforeCreate(db *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.New().String()
	}
	return ValidateUsername(p.Username)
}

/*

ProfileFollow is a "many-to-many" relation of one profile following another

FollowerID: the profile that follows
FolloweeID: the profile being followed
CreatedAt: time when relation is created

*/

type ProfileFollow struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey"`
	CreatedAt  time.Time
}

// The follow graph is irreflexive. A self-referential pair is undone inside
// the same transaction, other rows in the same batch are unaffected.
func (f *ProfileFollow) AfterCreate(db *gorm.DB) error {
	if f.FollowerID != f.FolloweeID {
		return nil
	}
	return db.Where("follower_id = ? AND followee_id = ?", f.FollowerID, f.FolloweeID).
		Delete(&ProfileFollow{}).Error
}
