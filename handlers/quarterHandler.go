package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/middleware"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/services"
	"github.com/noracami/my-12-week-year/utils"
	"go.uber.org/zap"
)

func GetQuarters(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var quarters []models.Quarter
	if err := db.DB.Where("user_id = ?", currentUser.ID).
		Order("start_date DESC").
		Find(&quarters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quarters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quarters": quarters})
}

// GetActiveQuarter finds the quarter containing today and reports how far
// into it the user is.
func GetActiveQuarter(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	today := utils.FormatDate(time.Now().UTC())

	var quarter models.Quarter
	err := db.DB.Where("user_id = ? AND start_date <= ? AND end_date >= ?",
		currentUser.ID, today, today).
		Order("start_date DESC").
		First(&quarter).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"quarter": nil, "week_number": nil, "days_remaining": nil})
		return
	}

	daysIn, err := utils.DaysBetween(quarter.StartDate, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute quarter progress"})
		return
	}
	daysRemaining, err := utils.DaysBetween(today, quarter.EndDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute quarter progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quarter":        quarter,
		"week_number":    daysIn/7 + 1,
		"days_remaining": daysRemaining,
	})
}

func GetQuarter(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var quarter models.Quarter
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&quarter, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarter not found"})
		return
	}

	var tactics []models.Tactic
	if err := db.DB.Where("quarter_id = ? AND user_id = ?", quarter.ID, currentUser.ID).
		Order("sort_order ASC").
		Find(&tactics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tactics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quarter": quarter, "tactics": tactics})
}

func CreateQuarter(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Name      string `json:"name" validate:"required"`
		StartDate string `json:"start_date" validate:"required"`
		Goals     string `json:"goals"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := utils.ParseDate(input.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	// A quarter is always twelve weeks: end date is derived, not supplied.
	endDate, err := utils.QuarterEnd(input.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quarter := models.Quarter{
		UserID:    currentUser.ID,
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   endDate,
		Goals:     input.Goals,
		Status:    models.QuarterPlanning,
	}

	if err := db.DB.Create(&quarter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quarter"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"quarter": quarter})
}

func UpdateQuarter(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var quarter models.Quarter
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&quarter, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarter not found"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		StartDate   *string `json:"start_date"`
		Goals       *string `json:"goals"`
		ReviewNotes *string `json:"review_notes"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Status != nil && !models.ValidQuarterStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if input.Name != nil {
		quarter.Name = *input.Name
	}
	if input.StartDate != nil {
		if _, err := utils.ParseDate(*input.StartDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		endDate, err := utils.QuarterEnd(*input.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		quarter.StartDate = *input.StartDate
		quarter.EndDate = endDate
	}
	if input.Goals != nil {
		quarter.Goals = *input.Goals
	}
	if input.ReviewNotes != nil {
		quarter.ReviewNotes = *input.ReviewNotes
	}
	if input.Status != nil {
		quarter.Status = *input.Status
	}

	if err := db.DB.Save(&quarter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quarter"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"quarter": quarter})
}

func DeleteQuarter(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var quarter models.Quarter
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&quarter, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarter not found"})
		return
	}

	// Detach tactics rather than deleting them: they outlive planning cycles.
	if err := db.DB.Model(&models.Tactic{}).
		Where("quarter_id = ?", quarter.ID).
		Update("quarter_id", nil).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detach tactics"})
		return
	}

	if err := db.DB.Delete(&quarter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quarter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetQuarterScoreboard computes the score of each week of the quarter.
func GetQuarterScoreboard(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var quarter models.Quarter
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&quarter, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarter not found"})
		return
	}

	board, err := services.BuildQuarterScoreboard(&quarter, utils.Logger)
	if err != nil {
		utils.Logger.Error("scoreboard_failed", zap.Uint("quarter_id", quarter.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build scoreboard"})
		return
	}

	c.JSON(http.StatusOK, board)
}
