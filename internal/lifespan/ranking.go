package lifespan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dymm/internal/paging"

	"gorm.io/gorm"
)

var ErrNotRanked = errors.New("avatar not ranked")
var ErrInvalidBracket = errors.New("invalid age bracket")

// DefaultPageSize is the leaderboard page size.
const DefaultPageSize = 20

// Entry is one leaderboard row.
type Entry struct {
	AvatarID     uint64  `gorm:"column:id" json:"avatar_id"`
	FirstName    string  `gorm:"column:first_name" json:"first_name"`
	LastName     string  `gorm:"column:last_name" json:"last_name"`
	PhotoName    *string `gorm:"column:photo_name" json:"photo_name"`
	ColorCode    int     `gorm:"column:color_code" json:"color_code"`
	FullLifespan *int64  `gorm:"column:full_lifespan" json:"full_lifespan"`
	RankNum      int64   `gorm:"column:rank_num" json:"rank_num"`
}

// DOBWindow restricts a ranking to avatars born within [From, To].
type DOBWindow struct {
	From time.Time
	To   time.Time
}

// Age brackets accepted by BracketWindow.
const (
	BracketAll     = 1
	BracketUnder30 = 2
	Bracket30to50  = 3
	Bracket50to70  = 4
	BracketOver70  = 5
)

var (
	openPast   = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	openFuture = time.Date(2999, 12, 1, 0, 0, 0, 0, time.UTC)
)

// BracketWindow converts an age bracket to a date-of-birth window relative
// to today. BracketAll has no window.
func BracketWindow(bracket int, today time.Time) (*DOBWindow, error) {
	y, m, d := today.Date()
	yearsAgo := func(n int) time.Time { return time.Date(y-n, m, d, 0, 0, 0, 0, time.UTC) }

	switch bracket {
	case BracketAll:
		return nil, nil
	case BracketUnder30:
		return &DOBWindow{From: yearsAgo(30), To: openFuture}, nil
	case Bracket30to50:
		return &DOBWindow{From: yearsAgo(50), To: yearsAgo(30)}, nil
	case Bracket50to70:
		return &DOBWindow{From: yearsAgo(70), To: yearsAgo(50)}, nil
	case BracketOver70:
		return &DOBWindow{From: openPast, To: yearsAgo(70)}, nil
	}
	return nil, ErrInvalidBracket
}

// StartingRank maps a leaderboard starting code to the first rank shown.
func StartingRank(code int) int64 {
	switch code {
	case 2:
		return 100
	case 3:
		return 500
	case 4:
		return 1000
	}
	return 1
}

// Ranker ranks avatars by their persisted full_lifespan. The value is a
// cache refreshed only when an avatar requests its estimate, so ranks can
// lag behind new logs until then.
type Ranker struct {
	DB *gorm.DB
}

// RankOf returns the avatar's entry within the window, or ErrNotRanked.
func (r *Ranker) RankOf(ctx context.Context, avatarID uint64, w *DOBWindow) (Entry, error) {
	var rows []Entry
	err := r.DB.WithContext(ctx).
		Table("(?) AS ranked", r.ranked(ctx, w)).
		Where("id = ?", avatarID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return Entry{}, fmt.Errorf("rank of %d: %w", avatarID, err)
	}
	if len(rows) == 0 {
		return Entry{}, ErrNotRanked
	}
	return rows[0], nil
}

// Page returns leaderboard rows with rank >= startRank, page 1-indexed.
func (r *Ranker) Page(ctx context.Context, w *DOBWindow, startRank int64, page, pageSize int) ([]Entry, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	out := []Entry{}
	err := r.DB.WithContext(ctx).
		Table("(?) AS ranked", r.ranked(ctx, w)).
		Where("rank_num >= ?", startRank).
		Order("rank_num, id").
		Scopes(paging.Scope(page, pageSize)).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("ranking page %d: %w", page, err)
	}
	return out, nil
}

func (r *Ranker) ranked(ctx context.Context, w *DOBWindow) *gorm.DB {
	q := r.DB.WithContext(ctx).Table("avatars").
		Select("id, first_name, last_name, photo_name, color_code, full_lifespan, "+
			"RANK() OVER (ORDER BY full_lifespan DESC) AS rank_num").
		Where("is_active = ? AND is_blocked = ? AND full_lifespan > 0", true, false)
	if w != nil {
		q = q.Where("date_of_birth >= ? AND date_of_birth <= ?", w.From, w.To)
	}
	return q
}
