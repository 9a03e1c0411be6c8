package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/middleware"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/services"
	"github.com/noracami/my-12-week-year/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetWeekSelection returns the effective tactic set for a week, carrying an
// older selection forward when the week has no explicit one.
func GetWeekSelection(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	weekStart := c.Query("weekStart")
	if weekStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekStart is required"})
		return
	}
	// Align to the Monday of the requested week so reads agree with the keys
	// writes are stored under.
	weekStart, err := utils.WeekStart(weekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	resolved, err := services.ResolveWeekSelection(services.GormSelectionStore{}, currentUser.ID, weekStart)
	if err != nil {
		utils.Logger.Error("resolve_selection_failed", zap.Uint("user_id", currentUser.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve week selection"})
		return
	}

	c.JSON(http.StatusOK, resolved)
}

// PutWeekSelection upserts the explicit tactic set for a week. One row per
// (user, weekStart); a repeat write replaces the id list.
func PutWeekSelection(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		WeekStart string `json:"week_start" validate:"required"`
		TacticIDs []uint `json:"tactic_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Selections are keyed by Monday; storing one under a mid-week key would
	// make it invisible to scoring, which resolves Monday-aligned.
	monday, err := utils.WeekStart(input.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	if monday != input.WeekStart {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be a Monday"})
		return
	}
	if input.TacticIDs == nil {
		input.TacticIDs = []uint{}
	}

	// Every id must belong to the caller.
	if len(input.TacticIDs) > 0 {
		var owned []uint
		if err := db.DB.Model(&models.Tactic{}).
			Where("user_id = ?", currentUser.ID).
			Pluck("id", &owned).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tactics"})
			return
		}
		ownedSet := make(map[uint]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}
		var invalid []uint
		for _, id := range input.TacticIDs {
			if !ownedSet[id] {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tactic_ids", "invalid_ids": invalid})
			return
		}
	}

	var selection models.WeekSelection
	err = db.DB.Where("user_id = ? AND week_start = ?", currentUser.ID, input.WeekStart).
		First(&selection).Error
	switch {
	case err == nil:
		if err := selection.EncodeTacticIDs(input.TacticIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode selection"})
			return
		}
		if err := db.DB.Save(&selection).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update selection"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		selection = models.WeekSelection{
			UserID:    currentUser.ID,
			WeekStart: input.WeekStart,
		}
		if err := selection.EncodeTacticIDs(input.TacticIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode selection"})
			return
		}
		if err := db.DB.Create(&selection).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create selection"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch selection"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, services.ResolvedSelection{
		WeekStart: input.WeekStart,
		TacticIDs: input.TacticIDs,
		IsCustom:  true,
	})
}

// DeleteWeekSelection clears a week's explicit selection so the week reverts
// to carry-forward resolution.
func DeleteWeekSelection(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	weekStart := c.Query("weekStart")
	if weekStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekStart is required"})
		return
	}
	monday, err := utils.WeekStart(weekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	if monday != weekStart {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekStart must be a Monday"})
		return
	}

	if err := db.DB.Where("user_id = ? AND week_start = ?", currentUser.ID, weekStart).
		Delete(&models.WeekSelection{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete selection"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
