package services

import (
	"errors"

	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/utils"
	"gorm.io/gorm"
)

// SelectionLookbackWeeks bounds the carry-forward search: the requested week
// plus eleven prior weeks, matching the quarter length.
const SelectionLookbackWeeks = 12

// SelectionStore is the slice of storage the resolver needs. db.DB satisfies
// it through GormSelectionStore; tests substitute an in-memory fake.
type SelectionStore interface {
	// SelectionForWeek returns the explicit selection row for (userID,
	// weekStart), or found=false when no row exists. A missing row is not an
	// error: it is what triggers carry-forward.
	SelectionForWeek(userID uint, weekStart string) (sel *models.WeekSelection, found bool, err error)
	// ActiveTacticIDs lists the ids of the user's currently-active tactics.
	ActiveTacticIDs(userID uint) ([]uint, error)
}

type ResolvedSelection struct {
	WeekStart string `json:"weekStart"`
	TacticIDs []uint `json:"tacticIds"`
	IsCustom  bool   `json:"isCustom"`
}

// ResolveWeekSelection determines which tactics count for the week beginning
// weekStart. It looks for an explicit selection at weekStart, then steps back
// seven days at a time for up to twelve weeks total. A hit in the requested
// week itself is custom; a hit in an older week is inherited verbatim with
// IsCustom=false. With no hit inside the lookback the user's active tactics
// are the roster. Stateless: every call re-reads stored state.
func ResolveWeekSelection(store SelectionStore, userID uint, weekStart string) (*ResolvedSelection, error) {
	current := weekStart

	for i := 0; i < SelectionLookbackWeeks; i++ {
		sel, found, err := store.SelectionForWeek(userID, current)
		if err != nil {
			return nil, err
		}
		if found {
			ids, err := sel.DecodeTacticIDs()
			if err != nil {
				return nil, err
			}
			return &ResolvedSelection{
				WeekStart: weekStart,
				TacticIDs: ids,
				IsCustom:  i == 0,
			}, nil
		}

		current, err = utils.AddDays(current, -7)
		if err != nil {
			return nil, err
		}
	}

	ids, err := store.ActiveTacticIDs(userID)
	if err != nil {
		return nil, err
	}
	return &ResolvedSelection{
		WeekStart: weekStart,
		TacticIDs: ids,
		IsCustom:  false,
	}, nil
}

// GormSelectionStore backs the resolver with the shared gorm connection.
type GormSelectionStore struct{}

func (GormSelectionStore) SelectionForWeek(userID uint, weekStart string) (*models.WeekSelection, bool, error) {
	var sel models.WeekSelection
	err := db.DB.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&sel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &sel, true, nil
}

func (GormSelectionStore) ActiveTacticIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := db.DB.Model(&models.Tactic{}).
		Where("user_id = ? AND active = ?", userID, true).
		Order("sort_order ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
