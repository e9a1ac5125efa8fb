// Package engagement exposes the transactional entry points for likes,
// dislikes and follows. The consistency rules themselves live on the join
// rows in model, so writes through associations behave identically; these
// functions are the front door the request layer uses, with the acting
// profile passed explicitly.
package engagement

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsifi-app/pulsifi-backend/model"
)

// Like moves the (actor, content) pair into the liked state. An existing
// dislike is removed first, liking twice is a no-op, and a creator liking
// their own content ends with no reaction recorded.
func Like(db *gorm.DB, actorID string, ref model.ContentRef) error {
	return db.Transaction(func(tx *gorm.DB) error {
		switch ref.Type {
		case model.ContentTypePulse:
			return createReaction(tx, &model.PulseLike{PulseID: ref.ID, ProfileID: actorID})
		case model.ContentTypeReply:
			return createReaction(tx, &model.ReplyLike{ReplyID: ref.ID, ProfileID: actorID})
		}
		return errors.Errorf("content %q cannot be liked", ref.Type)
	})
}

// Dislike moves the (actor, content) pair into the disliked state, removing
// an existing like first.
func Dislike(db *gorm.DB, actorID string, ref model.ContentRef) error {
	return db.Transaction(func(tx *gorm.DB) error {
		switch ref.Type {
		case model.ContentTypePulse:
			return createReaction(tx, &model.PulseDislike{PulseID: ref.ID, ProfileID: actorID})
		case model.ContentTypeReply:
			return createReaction(tx, &model.ReplyDislike{ReplyID: ref.ID, ProfileID: actorID})
		}
		return errors.Errorf("content %q cannot be disliked", ref.Type)
	})
}

// RemoveLike transitions liked -> none. Removing a like that does not exist
// is a no-op.
func RemoveLike(db *gorm.DB, actorID string, ref model.ContentRef) error {
	switch ref.Type {
	case model.ContentTypePulse:
		return db.Where("pulse_id = ? AND profile_id = ?", ref.ID, actorID).
			Delete(&model.PulseLike{}).Error
	case model.ContentTypeReply:
		return db.Where("reply_id = ? AND profile_id = ?", ref.ID, actorID).
			Delete(&model.ReplyLike{}).Error
	}
	return errors.Errorf("content %q cannot be liked", ref.Type)
}

// RemoveDislike transitions disliked -> none.
func RemoveDislike(db *gorm.DB, actorID string, ref model.ContentRef) error {
	switch ref.Type {
	case model.ContentTypePulse:
		return db.Where("pulse_id = ? AND profile_id = ?", ref.ID, actorID).
			Delete(&model.PulseDislike{}).Error
	case model.ContentTypeReply:
		return db.Where("reply_id = ? AND profile_id = ?", ref.ID, actorID).
			Delete(&model.ReplyDislike{}).Error
	}
	return errors.Errorf("content %q cannot be disliked", ref.Type)
}

// Follow adds target to the actor's follow set. A self-follow is filtered out
// by the join-row hook and leaves no relation behind.
func Follow(db *gorm.DB, actorID, targetID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return createReaction(tx, &model.ProfileFollow{FollowerID: actorID, FolloweeID: targetID})
	})
}

// Unfollow removes target from the actor's follow set.
func Unfollow(db *gorm.DB, actorID, targetID string) error {
	return db.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Delete(&model.ProfileFollow{}).Error
}

// ReactionCounts reads the like/dislike totals for a piece of content
// straight from the relation tables.
func ReactionCounts(db *gorm.DB, ref model.ContentRef) (likes, dislikes int64, err error) {
	switch ref.Type {
	case model.ContentTypePulse:
		if err = db.Model(&model.PulseLike{}).Where("pulse_id = ?", ref.ID).Count(&likes).Error; err != nil {
			return
		}
		err = db.Model(&model.PulseDislike{}).Where("pulse_id = ?", ref.ID).Count(&dislikes).Error
		return
	case model.ContentTypeReply:
		if err = db.Model(&model.ReplyLike{}).Where("reply_id = ?", ref.ID).Count(&likes).Error; err != nil {
			return
		}
		err = db.Model(&model.ReplyDislike{}).Where("reply_id = ?", ref.ID).Count(&dislikes).Error
		return
	}
	return 0, 0, errors.Errorf("content %q has no reactions", ref.Type)
}

// Reaction rows carry composite primary keys, so a repeated reaction would
// conflict; DoNothing keeps the operation idempotent while the row hooks
// still run inside the same transaction.
func createReaction(tx *gorm.DB, row interface{}) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}
