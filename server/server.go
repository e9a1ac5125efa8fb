// Package server wires the rule engines behind a REST surface. Handlers are
// factories taking their dependencies explicitly, so routes stay trivially
// testable against a temp database.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/events"
	"github.com/pulsifi-app/pulsifi-backend/server/middlewares"
	"github.com/pulsifi-app/pulsifi-backend/utils"
)

// NewRouter builds the full route table. store and bus may be nil; the
// corresponding handlers degrade to uncached/unnotified behavior.
func NewRouter(db *gorm.DB, store *utils.EngagementStatusStore, bus *events.Bus) *gin.Engine {
	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, "pong")
	})

	authed := router.Group("/", middlewares.ActorAuth(db))

	authed.POST("/pulses", CreatePulseHandler(db))
	authed.GET("/feed", FeedHandler(db, store))
	authed.POST("/pulses/:id/hide", HidePulseHandler(db, bus))
	authed.POST("/pulses/:id/show", ShowPulseHandler(db))
	authed.DELETE("/pulses/:id", HidePulseHandler(db, bus))

	authed.POST("/replies", CreateReplyHandler(db))
	authed.DELETE("/replies/:id", HideReplyHandler(db))

	authed.POST("/content/:type/:id/like", ReactionHandler(db, store, actionLike))
	authed.POST("/content/:type/:id/dislike", ReactionHandler(db, store, actionDislike))
	authed.POST("/content/:type/:id/unlike", ReactionHandler(db, store, actionUnlike))
	authed.POST("/content/:type/:id/undislike", ReactionHandler(db, store, actionUndislike))

	authed.POST("/profiles", CreateProfileHandler(db))
	authed.POST("/profiles/:id/follow", FollowHandler(db, true))
	authed.POST("/profiles/:id/unfollow", FollowHandler(db, false))
	authed.POST("/profiles/:id/deactivate", DeactivateProfileHandler(db, bus))

	authed.POST("/reports", FileReportHandler(db, bus))

	staff := authed.Group("/", middlewares.RequireStaff())
	staff.PATCH("/reports/:id/status", UpdateReportStatusHandler(db))
	staff.POST("/groups/:name/members/:profileId", GroupMembershipHandler(db, bus, true))
	staff.DELETE("/groups/:name/members/:profileId", GroupMembershipHandler(db, bus, false))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Pulsifi server - API not found"})
	})

	return router
}
