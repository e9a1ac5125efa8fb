package model

import (
	"time"

	"gorm.io/gorm"
)

/*

PulseLike / PulseDislike / ReplyLike / ReplyDislike are the "many-to-many"
reaction relations between profiles and content.

Two invariants are enforced on every insert, regardless of whether the write
came through the join row directly or through an association on either side:

 1. like and dislike are mutually exclusive per (content, profile) pair, last
    write wins, the opposing row is removed before the insert commits
 2. a creator's reaction to their own content is void, the inserted row is
    undone inside the same transaction without raising an error

Association writes must go through a freshly loaded owner. gorm's Append
re-saves every row already held in the owner's relation slice, so a retained
object whose slice predates a correction would resurrect the deleted row and
flip a reaction the profile has since changed. The engagement package writes
the join rows directly and is not affected.

*/

type PulseLike struct {
	PulseID   string `gorm:"primaryKey"`
	ProfileID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (l *PulseLike) BeforeCreate(db *gorm.DB) error {
	return db.Where("pulse_id = ? AND profile_id = ?", l.PulseID, l.ProfileID).
		Delete(&PulseDislike{}).Error
}

func (l *PulseLike) AfterCreate(db *gorm.DB) error {
	return undoCreatorReaction(db, &Pulse{}, l.PulseID, l.ProfileID, &PulseLike{}, "pulse_id")
}

type PulseDislike struct {
	PulseID   string `gorm:"primaryKey"`
	ProfileID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (d *PulseDislike) BeforeCreate(db *gorm.DB) error {
	return db.Where("pulse_id = ? AND profile_id = ?", d.PulseID, d.ProfileID).
		Delete(&PulseLike{}).Error
}

func (d *PulseDislike) AfterCreate(db *gorm.DB) error {
	return undoCreatorReaction(db, &Pulse{}, d.PulseID, d.ProfileID, &PulseDislike{}, "pulse_id")
}

type ReplyLike struct {
	ReplyID   string `gorm:"primaryKey"`
	ProfileID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (l *ReplyLike) BeforeCreate(db *gorm.DB) error {
	return db.Where("reply_id = ? AND profile_id = ?", l.ReplyID, l.ProfileID).
		Delete(&ReplyDislike{}).Error
}

func (l *ReplyLike) AfterCreate(db *gorm.DB) error {
	return undoCreatorReaction(db, &Reply{}, l.ReplyID, l.ProfileID, &ReplyLike{}, "reply_id")
}

type ReplyDislike struct {
	ReplyID   string `gorm:"primaryKey"`
	ProfileID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (d *ReplyDislike) BeforeCreate(db *gorm.DB) error {
	return db.Where("reply_id = ? AND profile_id = ?", d.ReplyID, d.ProfileID).
		Delete(&ReplyLike{}).Error
}

func (d *ReplyDislike) AfterCreate(db *gorm.DB) error {
	return undoCreatorReaction(db, &Reply{}, d.ReplyID, d.ProfileID, &ReplyDislike{}, "reply_id")
}

// undoCreatorReaction removes a reaction row again when the reacting profile
// is the content's creator. The content lookup runs in the insert's
// transaction, so the undo and the insert commit or roll back together.
func undoCreatorReaction(db *gorm.DB, content interface{}, contentID, profileID string, row interface{}, contentColumn string) error {
	var creatorIDs []string
	if err := db.Model(content).Where("id = ?", contentID).
		Pluck("creator_id", &creatorIDs).Error; err != nil {
		return err
	}
	if len(creatorIDs) == 0 {
		return gorm.ErrRecordNotFound
	}
	if creatorIDs[0] != profileID {
		return nil
	}
	return db.Where(contentColumn+" = ? AND profile_id = ?", contentID, profileID).
		Delete(row).Error
}
