package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/middleware"
	"github.com/noracami/my-12-week-year/models"
)

type tacticInput struct {
	Name            string   `json:"name" validate:"required"`
	Type            string   `json:"type" validate:"required,oneof=daily_check daily_number daily_time weekly_count weekly_number"`
	TargetValue     *float64 `json:"target_value"`
	TargetDirection string   `json:"target_direction" validate:"omitempty,oneof=gte lte"`
	Unit            string   `json:"unit"`
	Category        string   `json:"category"`
	QuarterID       *uint    `json:"quarter_id"`
	SortOrder       int      `json:"sort_order"`
}

func CreateTactic(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input tacticInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.TargetValue != nil && (math.IsNaN(*input.TargetValue) || math.IsInf(*input.TargetValue, 0)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_value must be finite"})
		return
	}

	direction := input.TargetDirection
	if direction == "" {
		direction = models.DirectionGTE
	}

	tactic := models.Tactic{
		UserID:          currentUser.ID,
		Name:            input.Name,
		Type:            input.Type,
		TargetValue:     input.TargetValue,
		TargetDirection: direction,
		Unit:            input.Unit,
		Category:        input.Category,
		QuarterID:       input.QuarterID,
		SortOrder:       input.SortOrder,
		Active:          true,
	}

	if err := db.DB.Create(&tactic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tactic"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusCreated, gin.H{"tactic": tactic})
}

func GetTactics(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var tactics []models.Tactic
	query := db.DB.Order("sort_order ASC, id ASC")

	if currentUser.Role != models.RoleAdmin {
		query = query.Where("user_id = ?", currentUser.ID)
	} else {
		userID := c.Query("user_id")
		if userID != "" {
			query = query.Where("user_id = ?", userID)
		}
	}

	if err := query.Find(&tactics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tactics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tactics": tactics})
}

func UpdateTactic(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var tactic models.Tactic
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&tactic, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tactic not found"})
		return
	}

	var input struct {
		Name            *string  `json:"name"`
		Type            *string  `json:"type"`
		TargetValue     *float64 `json:"target_value"`
		TargetDirection *string  `json:"target_direction"`
		Unit            *string  `json:"unit"`
		Category        *string  `json:"category"`
		QuarterID       *uint    `json:"quarter_id"`
		SortOrder       *int     `json:"sort_order"`
		Active          *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Type != nil && !models.ValidTacticType(*input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}
	if input.TargetDirection != nil && !models.ValidDirection(*input.TargetDirection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target_direction"})
		return
	}
	if input.TargetValue != nil && (math.IsNaN(*input.TargetValue) || math.IsInf(*input.TargetValue, 0)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_value must be finite"})
		return
	}

	if input.Name != nil {
		tactic.Name = *input.Name
	}
	if input.Type != nil {
		tactic.Type = *input.Type
	}
	if input.TargetValue != nil {
		tactic.TargetValue = input.TargetValue
	}
	if input.TargetDirection != nil {
		tactic.TargetDirection = *input.TargetDirection
	}
	if input.Unit != nil {
		tactic.Unit = *input.Unit
	}
	if input.Category != nil {
		tactic.Category = *input.Category
	}
	if input.QuarterID != nil {
		tactic.QuarterID = input.QuarterID
	}
	if input.SortOrder != nil {
		tactic.SortOrder = *input.SortOrder
	}
	if input.Active != nil {
		tactic.Active = *input.Active
	}

	if err := db.DB.Save(&tactic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tactic"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"tactic": tactic})
}

func DeleteTactic(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var tactic models.Tactic
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&tactic, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tactic not found"})
		return
	}

	if err := db.DB.Delete(&tactic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tactic"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Tactic deleted"})
}
