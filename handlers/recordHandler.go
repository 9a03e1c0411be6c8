package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/cache"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/middleware"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/services"
	"github.com/noracami/my-12-week-year/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetRecords lists the user's records, optionally narrowed by date range and
// tactic.
func GetRecords(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	tacticID := c.Query("tacticId")

	for _, d := range []string{startDate, endDate} {
		if d != "" {
			if _, err := utils.ParseDate(d); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
				return
			}
		}
	}

	query := db.DB.Model(&models.Record{}).
		Joins("JOIN tactics ON tactics.id = records.tactic_id").
		Where("tactics.user_id = ?", currentUser.ID)

	if startDate != "" {
		query = query.Where("records.date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("records.date <= ?", endDate)
	}
	if tacticID != "" {
		query = query.Where("records.tactic_id = ?", tacticID)
	}

	var records []models.Record
	if err := query.Order("records.date ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// UpsertRecord writes the value for a (tactic, date) pair. One row per pair:
// a second write for the same day overwrites the value in place, it never
// creates a duplicate. The unique index enforces this against races.
func UpsertRecord(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		TacticID uint     `json:"tactic_id" validate:"required"`
		Date     string   `json:"date" validate:"required"`
		Value    *float64 `json:"value" validate:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := utils.ParseDate(input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	if math.IsNaN(*input.Value) || math.IsInf(*input.Value, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be finite"})
		return
	}

	var tactic models.Tactic
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&tactic, input.TacticID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tactic not found"})
		return
	}

	var record models.Record
	err := db.DB.Where("tactic_id = ? AND date = ?", input.TacticID, input.Date).First(&record).Error
	switch {
	case err == nil:
		record.Value = *input.Value
		if err := db.DB.Save(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update record"})
			return
		}
		middleware.InvalidateScoreCache(currentUser.ID)
		c.JSON(http.StatusOK, gin.H{"record": record})
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.Record{
			TacticID: input.TacticID,
			Date:     input.Date,
			Value:    *input.Value,
		}
		if err := db.DB.Create(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create record"})
			return
		}
		middleware.InvalidateScoreCache(currentUser.ID)
		c.JSON(http.StatusCreated, gin.H{"record": record})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch record"})
	}
}

func DeleteRecord(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var record models.Record
	err := db.DB.Joins("JOIN tactics ON tactics.id = records.tactic_id").
		Where("records.id = ? AND tactics.user_id = ?", id, currentUser.ID).
		First(&record).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	if err := db.DB.Delete(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
		return
	}

	middleware.InvalidateScoreCache(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetScore resolves the effective tactic set for the week containing
// startDate and computes the completion score over [startDate, endDate].
func GetScore(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
		return
	}
	if _, err := utils.ParseDate(startDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	if _, err := utils.ParseDate(endDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	if diff, _ := utils.DaysBetween(startDate, endDate); diff < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must not precede startDate"})
		return
	}

	cacheKey := fmt.Sprintf("cache:%d:score:%s:%s", currentUser.ID, startDate, endDate)
	var cached services.ScoreResult
	if err := cache.Get(cacheKey, &cached); err == nil {
		utils.ScoreComputations.WithLabelValues("cache").Inc()
		c.JSON(http.StatusOK, cached)
		return
	}

	weekStart, err := utils.WeekStart(startDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, err := services.ResolveWeekSelection(services.GormSelectionStore{}, currentUser.ID, weekStart)
	if err != nil {
		utils.Logger.Error("resolve_selection_failed", zap.Uint("user_id", currentUser.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve week selection"})
		return
	}

	tactics, err := services.TacticsForSelection(currentUser.ID, resolved.TacticIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tactics"})
		return
	}

	records, err := services.RecordsInRange(tactics, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch records"})
		return
	}

	result, err := services.ComputeScore(tactics, records, startDate, endDate)
	if err != nil {
		utils.Logger.Error("score_computation_failed", zap.Uint("user_id", currentUser.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute score"})
		return
	}

	utils.ScoreComputations.WithLabelValues("engine").Inc()
	cache.Set(cacheKey, result, 5*time.Minute)

	c.JSON(http.StatusOK, result)
}
