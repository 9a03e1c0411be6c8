package services

import (
	"fmt"
	"math"

	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/utils"
)

// ScoreDetail is the per-tactic breakdown behind a weekly score. DailyStatus
// is populated for daily tactic types, DailyValues for weekly_number; both
// are nil otherwise.
type ScoreDetail struct {
	TacticID    uint      `json:"tacticId"`
	TacticName  string    `json:"tacticName"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Target      float64   `json:"target"`
	Current     float64   `json:"current"`
	Achieved    bool      `json:"achieved"`
	Unit        string    `json:"unit"`
	DailyStatus []bool    `json:"dailyStatus"`
	DailyValues []float64 `json:"dailyValues"`
}

type ScoreResult struct {
	Score   int           `json:"score"`
	Details []ScoreDetail `json:"details"`
}

func meetsTarget(value, target float64, direction string) bool {
	if direction == models.DirectionLTE {
		return value <= target
	}
	return value >= target
}

// ComputeScore produces the aggregate completion percentage and per-tactic
// detail for the given window. It is pure: tactics must already be filtered
// to the resolved weekly set, and records must cover exactly those tactics
// within [startDate, endDate]. The only failure modes are a negative date
// range, an unrecognized tactic type, and non-finite record values; the call
// fails atomically, never returning a partial result.
//
// weeksInPeriod deliberately keeps round() semantics: a 10-day window counts
// as one week when scaling weekly targets. Callers depend on this, do not
// change it to floor or ceil.
func ComputeScore(tactics []models.Tactic, records []models.Record, startDate, endDate string) (*ScoreResult, error) {
	diff, err := utils.DaysBetween(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if diff < 0 {
		return nil, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}

	if len(tactics) == 0 {
		return &ScoreResult{Score: 0, Details: []ScoreDetail{}}, nil
	}

	for _, r := range records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("record %d has non-finite value", r.ID)
		}
	}

	daysInPeriod := diff + 1
	weeksInPeriod := int(math.Round(float64(daysInPeriod) / 7))
	allDates, err := utils.DatesBetween(startDate, endDate)
	if err != nil {
		return nil, err
	}

	// Later entries win on a duplicate date; callers order by updated_at so
	// the most recent write is authoritative.
	byTactic := make(map[uint]map[string]float64, len(tactics))
	for _, r := range records {
		m, ok := byTactic[r.TacticID]
		if !ok {
			m = make(map[string]float64)
			byTactic[r.TacticID] = m
		}
		m[r.Date] = r.Value
	}

	details := make([]ScoreDetail, 0, len(tactics))
	totalProgress := 0.0

	for _, tactic := range tactics {
		values := byTactic[tactic.ID]
		direction := tactic.TargetDirection
		if direction == "" {
			direction = models.DirectionGTE
		}

		detail := ScoreDetail{
			TacticID:   tactic.ID,
			TacticName: tactic.Name,
			Type:       tactic.Type,
			Category:   tactic.Category,
			Unit:       tactic.Unit,
		}

		switch tactic.Type {
		case models.TypeDailyCheck:
			// Every day of the window must be checked off.
			detail.Target = float64(daysInPeriod)
			detail.DailyStatus = make([]bool, len(allDates))
			for i, date := range allDates {
				if v, ok := values[date]; ok && v == 1 {
					detail.DailyStatus[i] = true
					detail.Current++
				}
			}
			detail.Achieved = detail.Current >= detail.Target

		case models.TypeDailyNumber, models.TypeDailyTime:
			// Every day of the window must individually meet the target.
			baseline := 0.0
			if tactic.TargetValue != nil {
				baseline = *tactic.TargetValue
			}
			detail.Target = float64(daysInPeriod)
			detail.DailyStatus = make([]bool, len(allDates))
			for i, date := range allDates {
				if v, ok := values[date]; ok && meetsTarget(v, baseline, direction) {
					detail.DailyStatus[i] = true
					detail.Current++
				}
			}
			detail.Achieved = detail.Current >= detail.Target

		case models.TypeWeeklyCount:
			// N completions per week, scaled to the number of weeks covered.
			perWeek := 1.0
			if tactic.TargetValue != nil {
				perWeek = *tactic.TargetValue
			}
			detail.Target = perWeek * float64(weeksInPeriod)
			for _, v := range values {
				if v == 1 {
					detail.Current++
				}
			}
			detail.Achieved = meetsTarget(detail.Current, detail.Target, direction)

		case models.TypeWeeklyNumber:
			// Sum of the window must meet the weekly target times weeks covered.
			perWeek := 1.0
			if tactic.TargetValue != nil {
				perWeek = *tactic.TargetValue
			}
			detail.Target = perWeek * float64(weeksInPeriod)
			detail.DailyValues = make([]float64, len(allDates))
			for i, date := range allDates {
				if v, ok := values[date]; ok {
					detail.DailyValues[i] = v
					detail.Current += v
				}
			}
			detail.Achieved = meetsTarget(detail.Current, detail.Target, direction)

		default:
			return nil, fmt.Errorf("unsupported tactic type %q (tactic %d)", tactic.Type, tactic.ID)
		}

		// Over-achievement never lifts the aggregate past a perfect week.
		if detail.Target > 0 {
			totalProgress += math.Min(detail.Current/detail.Target, 1)
		}

		details = append(details, detail)
	}

	score := int(math.Round(totalProgress / float64(len(details)) * 100))

	return &ScoreResult{Score: score, Details: details}, nil
}
