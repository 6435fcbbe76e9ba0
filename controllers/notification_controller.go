package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationController struct {
	DB    *gorm.DB
	FanIn *services.FanIn
}

func NewNotificationController(db *gorm.DB, fanIn *services.FanIn) *NotificationController {
	return &NotificationController{DB: db, FanIn: fanIn}
}

// Stream opens a server-sent event stream of coalesced refresh hints for the
// caller. The session is torn down when the client disconnects; any count
// still buffered in an open window is discarded.
func (nc *NotificationController) Stream(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var streams []string
	var pref models.NotificationPreference
	err := nc.DB.First(&pref, "profile_id = ?", actor.ID).Error
	switch {
	case err == nil:
		if !pref.Enabled {
			c.JSON(http.StatusForbidden, gin.H{"error": "Notifications are disabled for this profile"})
			return
		}
		streams = []string(pref.Streams)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No row means all streams.
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load notification preferences"})
		return
	}

	session := nc.FanIn.Open(actor.ID.String(), streams)
	defer session.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case alert, open := <-session.Alerts():
			if !open {
				return false
			}
			c.SSEvent("alert", alert)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (nc *NotificationController) GetPreferences(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var pref models.NotificationPreference
	if err := nc.DB.First(&pref, "profile_id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"enabled": true,
				"streams": services.Streams,
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load notification preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pref})
}

func (nc *NotificationController) UpdatePreferences(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		Enabled *bool    `json:"enabled" binding:"required"`
		Streams []string `json:"streams"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	known := make(map[string]bool, len(services.Streams))
	for _, s := range services.Streams {
		known[s] = true
	}
	for _, s := range input.Streams {
		if !known[s] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stream: " + s, "success": false})
			return
		}
	}

	pref := models.NotificationPreference{
		ProfileID: actor.ID,
		Enabled:   *input.Enabled,
		Streams:   pq.StringArray(input.Streams),
	}
	if err := nc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "streams", "updated_at"}),
	}).Create(&pref).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save notification preferences", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pref})
}
