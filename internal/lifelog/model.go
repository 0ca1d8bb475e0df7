package lifelog

import (
	"time"

	"dymm/internal/tag"
)

// LogGroup is one avatar's bucket for one day. Counters track the active
// tag logs inside it; CondScore is the day's condition score.
type LogGroup struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	AvatarID    uint64    `gorm:"index;not null" json:"avatar_id"`
	LogDate     time.Time `gorm:"type:date;index;not null" json:"log_date"`
	YearNumber  int       `gorm:"not null" json:"year_number"`
	MonthNumber int       `gorm:"not null" json:"month_number"`
	WeekYear    int       `gorm:"not null" json:"week_year"`
	WeekOfYear  int       `gorm:"not null" json:"week_of_year"`
	DayOfYear   int       `gorm:"not null" json:"day_of_year"`
	FoodCnt     int       `gorm:"not null;default:0" json:"food_cnt"`
	ActCnt      int       `gorm:"not null;default:0" json:"act_cnt"`
	DrugCnt     int       `gorm:"not null;default:0" json:"drug_cnt"`
	CondScore   *int      `json:"cond_score"`
	Note        *string   `gorm:"type:text" json:"note"`
	IsActive    bool      `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// newLogGroup derives the calendar keys from the log date.
func newLogGroup(avatarID uint64, day time.Time) LogGroup {
	day = dateOnly(day)
	weekYear, week := day.ISOWeek()
	return LogGroup{
		AvatarID:    avatarID,
		LogDate:     day,
		YearNumber:  day.Year(),
		MonthNumber: int(day.Month()),
		WeekYear:    weekYear,
		WeekOfYear:  week,
		DayOfYear:   day.YearDay(),
		IsActive:    true,
	}
}

// bump adds delta to the counter for t. Counters never go below zero.
func (g *LogGroup) bump(t tag.Type, delta int) {
	var c *int
	switch t {
	case tag.TypeFood:
		c = &g.FoodCnt
	case tag.TypeActivity:
		c = &g.ActCnt
	case tag.TypeDrug:
		c = &g.DrugCnt
	default:
		return
	}
	*c += delta
	if *c < 0 {
		*c = 0
	}
}

type TagLog struct {
	ID       uint64 `gorm:"primaryKey"`
	GroupID  uint64 `gorm:"index;not null"`
	TagID    uint64 `gorm:"index;not null"`
	XVal     int    `gorm:"not null;default:0"`
	YVal     int    `gorm:"not null;default:0"`
	IsActive bool   `gorm:"not null"`

	CreatedAt time.Time
}

// LogHistory remembers the tags an avatar logged most recently.
type LogHistory struct {
	ID       uint64 `gorm:"primaryKey"`
	AvatarID uint64 `gorm:"index;not null"`
	TagID    uint64 `gorm:"index;not null"`
	IsActive bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// AvatarCond is a condition the avatar reports having, with optional dates.
type AvatarCond struct {
	ID        uint64     `gorm:"primaryKey"`
	AvatarID  uint64     `gorm:"index;not null"`
	TagID     uint64     `gorm:"index;not null"`
	StartDate *time.Time `gorm:"type:date"`
	EndDate   *time.Time `gorm:"type:date"`
	IsActive  bool       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TagLogView is a tag log joined with its tag's names.
type TagLogView struct {
	ID      uint64   `json:"id"`
	GroupID uint64   `json:"group_id"`
	TagID   uint64   `json:"tag_id"`
	TagType tag.Type `json:"tag_type"`
	XVal    int      `json:"x_val"`
	YVal    int      `json:"y_val"`
	EngName string   `json:"eng_name"`
	KorName string   `json:"kor_name"`
	JpnName string   `json:"jpn_name"`
}

// TagRef is a logged or reported tag with its names. RefID is the id of
// the history or condition row; TagID serializes as "id" like a plain tag.
type TagRef struct {
	RefID     uint64     `json:"ref_id"`
	TagID     uint64     `json:"id"`
	TagType   tag.Type   `json:"tag_type"`
	EngName   string     `json:"eng_name"`
	KorName   string     `json:"kor_name"`
	JpnName   string     `json:"jpn_name"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
