package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Tactic types. Daily types count days, weekly types aggregate the window.
const (
	TypeDailyCheck   = "daily_check"
	TypeDailyNumber  = "daily_number"
	TypeDailyTime    = "daily_time"
	TypeWeeklyCount  = "weekly_count"
	TypeWeeklyNumber = "weekly_number"
)

const (
	DirectionGTE = "gte"
	DirectionLTE = "lte"
)

const (
	QuarterPlanning  = "planning"
	QuarterActive    = "active"
	QuarterCompleted = "completed"
)

func ValidTacticType(t string) bool {
	switch t {
	case TypeDailyCheck, TypeDailyNumber, TypeDailyTime, TypeWeeklyCount, TypeWeeklyNumber:
		return true
	}
	return false
}

func ValidDirection(d string) bool {
	return d == DirectionGTE || d == DirectionLTE
}

func ValidQuarterStatus(s string) bool {
	return s == QuarterPlanning || s == QuarterActive || s == QuarterCompleted
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique" json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Tactics      []Tactic  `gorm:"foreignKey:UserID"`
	Quarters     []Quarter `gorm:"foreignKey:UserID"`
}

type Tactic struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index" json:"user_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	TargetValue     *float64  `json:"target_value"`
	TargetDirection string    `gorm:"default:gte" json:"target_direction"`
	Unit            string    `json:"unit"`
	Category        string    `json:"category"`
	QuarterID       *uint     `json:"quarter_id"`
	SortOrder       int       `gorm:"default:0" json:"sort_order"`
	Active          bool      `gorm:"default:true" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Records         []Record  `gorm:"foreignKey:TacticID"`
}

// Record is one observation for a tactic on a calendar day. Dates are stored
// as YYYY-MM-DD strings so range queries stay plain string comparisons and
// never shift across timezones. The unique index backs the upsert invariant:
// one row per (tactic, date), writes overwrite in place.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TacticID  uint      `gorm:"uniqueIndex:idx_records_tactic_date" json:"tactic_id"`
	Date      string    `gorm:"uniqueIndex:idx_records_tactic_date;size:10" json:"date"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WeekSelection pins the set of tactics that count for the week beginning
// WeekStart (a Monday key). The absence of a row is meaningful: it tells the
// resolver to carry an older selection forward, so an empty TacticIDs list
// and a missing row are not the same thing.
type WeekSelection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_selections_user_week" json:"user_id"`
	WeekStart string    `gorm:"uniqueIndex:idx_selections_user_week;size:10" json:"week_start"`
	TacticIDs string    `json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DecodeTacticIDs unpacks the JSON id list stored in the TacticIDs text column.
func (s *WeekSelection) DecodeTacticIDs() ([]uint, error) {
	if s.TacticIDs == "" {
		return []uint{}, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(s.TacticIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *WeekSelection) EncodeTacticIDs(ids []uint) error {
	if ids == nil {
		ids = []uint{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	s.TacticIDs = string(data)
	return nil
}

type Quarter struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Name        string    `json:"name"`
	StartDate   string    `gorm:"size:10" json:"start_date"`
	EndDate     string    `gorm:"size:10" json:"end_date"`
	Goals       string    `json:"goals"`
	ReviewNotes string    `json:"review_notes"`
	Status      string    `gorm:"default:planning" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Tactics     []Tactic  `gorm:"foreignKey:QuarterID"`
}
