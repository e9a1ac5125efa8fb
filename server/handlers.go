package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/engagement"
	"github.com/pulsifi-app/pulsifi-backend/events"
	"github.com/pulsifi-app/pulsifi-backend/model"
	"github.com/pulsifi-app/pulsifi-backend/moderation"
	"github.com/pulsifi-app/pulsifi-backend/privilege"
	"github.com/pulsifi-app/pulsifi-backend/server/middlewares"
	"github.com/pulsifi-app/pulsifi-backend/utils"
	Logger "github.com/pulsifi-app/pulsifi-backend/utils/log"
	"github.com/pulsifi-app/pulsifi-backend/visibility"
)

const feedLimit = 50

type reactionAction int

const (
	actionLike reactionAction = iota
	actionDislike
	actionUnlike
	actionUndislike
)

type ContentResponse struct {
	Id        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Message   string    `json:"message"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int64     `json:"likes"`
	Dislikes  int64     `json:"dislikes"`
}

type createPulseRequest struct {
	Message string `json:"message" binding:"required"`
}

func CreatePulseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPulseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		actor := middlewares.CurrentActor(c)
		pulse := model.Pulse{CreatorID: actor.Id, Message: req.Message, Visible: true}
		if err := db.Create(&pulse).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pulse"})
			return
		}
		c.JSON(http.StatusCreated, contentResponse(&pulse, 0, 0))
	}
}

type createReplyRequest struct {
	ParentType string `json:"parent_type" binding:"required"`
	ParentID   string `json:"parent_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

func CreateReplyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		parentType, err := model.ParseContentType(req.ParentType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		actor := middlewares.CurrentActor(c)
		reply := model.Reply{
			CreatorID:  actor.Id,
			Message:    req.Message,
			Visible:    true,
			ParentType: parentType,
			ParentID:   req.ParentID,
		}
		if err := db.Create(&reply).Error; err != nil {
			if errors.Is(err, model.ErrBrokenParentReference) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reply"})
			return
		}
		resp := contentResponse(&reply, 0, 0)
		c.JSON(http.StatusCreated, gin.H{
			"reply":             resp,
			"original_pulse_id": reply.OriginalPulseID,
		})
	}
}

// FeedHandler lists visible pulses, newest first, with engagement counts
// served from the Redis cache when warm.
func FeedHandler(db *gorm.DB, store *utils.EngagementStatusStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pulses []*model.Pulse
		if err := db.Where("visible = ?", true).
			Order("created_at desc").Limit(feedLimit).Find(&pulses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
			return
		}

		responses := make([]*ContentResponse, 0, len(pulses))
		for _, pulse := range pulses {
			likes, dislikes, err := cachedCounts(c, db, store, pulse.Ref())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count reactions"})
				return
			}
			responses = append(responses, contentResponse(pulse, likes, dislikes))
		}
		c.JSON(http.StatusOK, gin.H{"pulses": responses})
	}
}

func HidePulseHandler(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		pulseID := c.Param("id")
		actor := middlewares.CurrentActor(c)
		if !canModerate(db, actor, pulseID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or staff may hide a pulse"})
			return
		}
		if err := visibility.HidePulse(db, pulseID); err != nil {
			respondVisibilityError(c, err)
			return
		}
		publish(bus, events.TopicContentHidden, events.ContentHidden{
			ContentType: string(model.ContentTypePulse), ContentID: pulseID,
		})
		c.JSON(http.StatusOK, gin.H{"hidden": pulseID})
	}
}

func ShowPulseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pulseID := c.Param("id")
		actor := middlewares.CurrentActor(c)
		if !canModerate(db, actor, pulseID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or staff may show a pulse"})
			return
		}
		if err := visibility.ShowPulse(db, pulseID); err != nil {
			respondVisibilityError(c, err)
			return
		}
		// descendants hidden by the cascade stay hidden on purpose
		c.JSON(http.StatusOK, gin.H{"shown": pulseID})
	}
}

func HideReplyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		replyID := c.Param("id")
		actor := middlewares.CurrentActor(c)
		var reply model.Reply
		if err := db.Select("id", "creator_id").Where("id = ?", replyID).First(&reply).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "reply not found"})
			return
		}
		if reply.CreatorID != actor.Id && !actor.IsStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or staff may hide a reply"})
			return
		}
		if err := visibility.HideReply(db, replyID); err != nil {
			respondVisibilityError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"hidden": replyID})
	}
}

func ReactionHandler(db *gorm.DB, store *utils.EngagementStatusStore, action reactionAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType, err := model.ParseContentType(c.Param("type"))
		if err != nil || contentType == model.ContentTypeProfile {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content type must be pulse or reply"})
			return
		}
		ref := model.ContentRef{Type: contentType, ID: c.Param("id")}
		actor := middlewares.CurrentActor(c)

		switch action {
		case actionLike:
			err = engagement.Like(db, actor.Id, ref)
		case actionDislike:
			err = engagement.Dislike(db, actor.Id, ref)
		case actionUnlike:
			err = engagement.RemoveLike(db, actor.Id, ref)
		case actionUndislike:
			err = engagement.RemoveDislike(db, actor.Id, ref)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reaction failed"})
			return
		}

		if store != nil {
			if err := store.Invalidate(c.Request.Context(), ref); err != nil {
				Logger.LogV2.Error(fmt.Sprintf("failed to invalidate engagement cache for %s: %v", ref, err))
			}
		}
		c.JSON(http.StatusOK, gin.H{"content": ref})
	}
}

type createProfileRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Bio      string `json:"bio"`
}

func CreateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		profile := model.Profile{Username: req.Username, Email: req.Email, Bio: req.Bio, Active: true}
		if err := db.Create(&profile).Error; err != nil {
			// reserved or duplicate usernames surface as field-level errors
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": profile.Id, "username": profile.Username})
	}
}

func FollowHandler(db *gorm.DB, follow bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := c.Param("id")
		actor := middlewares.CurrentActor(c)
		var err error
		if follow {
			err = engagement.Follow(db, actor.Id, targetID)
		} else {
			err = engagement.Unfollow(db, actor.Id, targetID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "follow mutation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"target": targetID})
	}
}

func DeactivateProfileHandler(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := c.Param("id")
		actor := middlewares.CurrentActor(c)
		if actor.Id != profileID && !actor.IsStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot deactivate another profile"})
			return
		}
		if err := visibility.DeactivateProfile(db, profileID); err != nil {
			respondVisibilityError(c, err)
			return
		}
		publish(bus, events.TopicContentHidden, events.ContentHidden{
			ContentType: string(model.ContentTypeProfile), ContentID: profileID,
		})
		c.JSON(http.StatusOK, gin.H{"deactivated": profileID})
	}
}

type fileReportRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	Category   string `json:"category" binding:"required"`
}

func FileReportHandler(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fileReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		targetType, err := model.ParseContentType(req.TargetType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		actor := middlewares.CurrentActor(c)

		report, err := moderation.FileReport(db, moderation.ReportInput{
			ReporterID: actor.Id,
			Target:     model.ContentRef{Type: targetType, ID: req.TargetID},
			Reason:     req.Reason,
			Category:   model.ReportCategory(req.Category),
		})
		if err != nil {
			switch {
			case errors.Is(err, moderation.ErrNoEligibleModerator):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": moderation.ErrNoEligibleModerator.Error()})
			case errors.Is(err, model.ErrBrokenParentReference):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		publish(bus, events.TopicReportFiled, events.ReportFiled{
			ReportID:    report.Id,
			Category:    string(report.Category),
			ModeratorID: report.AssignedModeratorID,
		})
		c.JSON(http.StatusCreated, gin.H{
			"id":                 report.Id,
			"status":             report.Status,
			"assigned_moderator": report.AssignedModeratorID,
		})
	}
}

type updateReportStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func UpdateReportStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateReportStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if err := moderation.UpdateReportStatus(db, c.Param("id"), model.ReportStatus(req.Status)); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
	}
}

func GroupMembershipHandler(db *gorm.DB, bus *events.Bus, add bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupName := c.Param("name")
		profileID := c.Param("profileId")
		var err error
		if add {
			err = privilege.AddToGroup(db, profileID, groupName)
		} else {
			err = privilege.RemoveFromGroup(db, profileID, groupName)
		}
		if err != nil {
			if errors.Is(err, privilege.ErrGroupNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "membership mutation failed"})
			return
		}
		publish(bus, events.TopicMembershipChanged, events.MembershipChanged{
			ProfileID: profileID, Group: groupName, Added: add,
		})
		c.JSON(http.StatusOK, gin.H{"group": groupName, "profile": profileID})
	}
}

func contentResponse(content interface{}, likes, dislikes int64) *ContentResponse {
	resp := ContentResponse{Likes: likes, Dislikes: dislikes}
	// field-for-field copy, join relations are skipped for the wire shape
	if err := copier.Copy(&resp, content); err != nil {
		Logger.LogV2.Error(fmt.Sprintf("failed to map content response: %v", err))
	}
	return &resp
}

func cachedCounts(c *gin.Context, db *gorm.DB, store *utils.EngagementStatusStore, ref model.ContentRef) (int64, int64, error) {
	if store != nil {
		likes, dislikes, ok, err := store.GetCounts(c.Request.Context(), ref)
		if err == nil && ok {
			return likes, dislikes, nil
		}
		if err != nil {
			Logger.LogV2.Error(fmt.Sprintf("engagement cache read failed for %s: %v", ref, err))
		}
	}
	likes, dislikes, err := engagement.ReactionCounts(db, ref)
	if err != nil {
		return 0, 0, err
	}
	if store != nil {
		if err := store.SetCounts(c.Request.Context(), ref, likes, dislikes); err != nil {
			Logger.LogV2.Error(fmt.Sprintf("engagement cache write failed for %s: %v", ref, err))
		}
	}
	return likes, dislikes, nil
}

func canModerate(db *gorm.DB, actor *model.Profile, pulseID string) bool {
	if actor.IsStaff {
		return true
	}
	var creatorIDs []string
	if err := db.Model(&model.Pulse{}).Where("id = ?", pulseID).
		Pluck("creator_id", &creatorIDs).Error; err != nil {
		return false
	}
	return len(creatorIDs) == 1 && creatorIDs[0] == actor.Id
}

func respondVisibilityError(c *gin.Context, err error) {
	if errors.Is(err, visibility.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func publish(bus *events.Bus, topic string, payload interface{}) {
	if err := bus.Publish(topic, payload); err != nil {
		Logger.LogV2.Error(fmt.Sprintf("failed to publish %s: %v", topic, err))
	}
}
