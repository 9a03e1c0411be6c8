package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noracami/my-12-week-year/cache"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/utils"
	"go.uber.org/zap"
)

type WeekScore struct {
	WeekNumber int    `json:"week_number"`
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
	Score      int    `json:"score"`
	Tactics    int    `json:"tactics"`
	IsCustom   bool   `json:"is_custom"`
	err        error
}

type QuarterScoreboard struct {
	QuarterID      uint        `json:"quarter_id"`
	Weeks          []WeekScore `json:"weeks"`
	ProcessingTime int64       `json:"processing_time_ms"`
}

const quarterWeeks = 12

// BuildQuarterScoreboard computes the score of each of a quarter's twelve
// weeks. The weeks are independent (separate queries, separate windows, no
// shared state), so each one runs in its own goroutine and the results are
// collected over a channel. A week that fails to compute is logged and
// reported as zero rather than aborting the whole board.
func BuildQuarterScoreboard(quarter *models.Quarter, logger *zap.Logger) (*QuarterScoreboard, error) {
	startTime := time.Now()

	cacheKey := fmt.Sprintf("scoreboard:%d:%d", quarter.UserID, quarter.ID)
	var cached QuarterScoreboard
	if err := cache.Get(cacheKey, &cached); err == nil {
		logger.Info("cache_hit", zap.String("key", cacheKey))
		return &cached, nil
	}

	scoreChan := make(chan WeekScore, quarterWeeks)
	var wg sync.WaitGroup

	for i := 0; i < quarterWeeks; i++ {
		wg.Add(1)
		go func(weekIndex int) {
			defer wg.Done()
			scoreChan <- computeQuarterWeek(quarter, weekIndex)
		}(i)
	}

	go func() {
		wg.Wait()
		close(scoreChan)
	}()

	weeks := make([]WeekScore, 0, quarterWeeks)
	for ws := range scoreChan {
		if ws.err != nil {
			logger.Warn("week_score_error",
				zap.Uint("quarter_id", quarter.ID),
				zap.Int("week_number", ws.WeekNumber),
				zap.Error(ws.err),
			)
			ws.Score = 0
		}
		weeks = append(weeks, ws)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })

	elapsed := time.Since(startTime)
	result := &QuarterScoreboard{
		QuarterID:      quarter.ID,
		Weeks:          weeks,
		ProcessingTime: elapsed.Milliseconds(),
	}

	cache.Set(cacheKey, result, 5*time.Minute)

	logger.Info("scoreboard_built",
		zap.Uint("quarter_id", quarter.ID),
		zap.Uint("user_id", quarter.UserID),
		zap.Duration("duration", elapsed),
	)

	return result, nil
}

func computeQuarterWeek(quarter *models.Quarter, weekIndex int) WeekScore {
	ws := WeekScore{WeekNumber: weekIndex + 1}

	weekStart, err := utils.AddDays(quarter.StartDate, weekIndex*7)
	if err != nil {
		ws.err = err
		return ws
	}
	weekEnd, err := utils.AddDays(weekStart, 6)
	if err != nil {
		ws.err = err
		return ws
	}
	ws.WeekStart = weekStart
	ws.WeekEnd = weekEnd

	resolved, err := ResolveWeekSelection(GormSelectionStore{}, quarter.UserID, weekStart)
	if err != nil {
		ws.err = err
		return ws
	}
	ws.IsCustom = resolved.IsCustom

	tactics, err := TacticsForSelection(quarter.UserID, resolved.TacticIDs)
	if err != nil {
		ws.err = err
		return ws
	}
	ws.Tactics = len(tactics)

	records, err := RecordsInRange(tactics, weekStart, weekEnd)
	if err != nil {
		ws.err = err
		return ws
	}

	result, err := ComputeScore(tactics, records, weekStart, weekEnd)
	if err != nil {
		ws.err = err
		return ws
	}
	ws.Score = result.Score

	return ws
}

// TacticsForSelection loads the user's active tactics filtered to the
// resolved id set. Ids pointing at deleted or deactivated tactics simply drop
// out, so a stale selection never aborts a score.
func TacticsForSelection(userID uint, tacticIDs []uint) ([]models.Tactic, error) {
	var active []models.Tactic
	err := db.DB.Where("user_id = ? AND active = ?", userID, true).
		Order("sort_order ASC, id ASC").
		Find(&active).Error
	if err != nil {
		return nil, err
	}

	selected := make(map[uint]bool, len(tacticIDs))
	for _, id := range tacticIDs {
		selected[id] = true
	}

	tactics := make([]models.Tactic, 0, len(tacticIDs))
	for _, t := range active {
		if selected[t.ID] {
			tactics = append(tactics, t)
		}
	}
	return tactics, nil
}

// RecordsInRange loads every record for the given tactics with date inside
// [startDate, endDate]. Ordered by updated_at so that if duplicates ever slip
// past the unique index the most recent write wins downstream.
func RecordsInRange(tactics []models.Tactic, startDate, endDate string) ([]models.Record, error) {
	if len(tactics) == 0 {
		return []models.Record{}, nil
	}

	ids := make([]uint, len(tactics))
	for i, t := range tactics {
		ids[i] = t.ID
	}

	var records []models.Record
	err := db.DB.Where("tactic_id IN ? AND date >= ? AND date <= ?", ids, startDate, endDate).
		Order("date ASC, updated_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
