package avatar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"dymm/internal/lifelog"
	"dymm/internal/lifespan"
)

var ErrScoreUnavailable = errors.New("no condition score in the last year")
var ErrBirthDateUnavailable = errors.New("date of birth not set")

// EstimateLifespan averages the avatar's condition scores over the year
// ending at now, stores the resulting full lifespan for ranking and
// returns the days remaining after subtracting the days already lived.
func (s *Service) EstimateLifespan(ctx context.Context, avatarID uint64, now time.Time) (int64, error) {
	a, err := s.Get(ctx, avatarID)
	if err != nil {
		return 0, err
	}

	avg, err := s.Logs.AverageScore(ctx, avatarID, lifelog.TrailingYear(now))
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, ErrScoreUnavailable
	}
	if a.DateOfBirth == nil {
		return 0, ErrBirthDateUnavailable
	}

	score := int(math.Round(*avg))
	if !lifespan.ValidScore(score) {
		return 0, fmt.Errorf("average score %d out of range", score)
	}
	full := int64(math.Round(lifespan.RemainingDays(score)))

	if err := s.DB.WithContext(ctx).Model(&Avatar{}).Where("id = ?", a.ID).
		Update("full_lifespan", full).Error; err != nil {
		return 0, fmt.Errorf("store lifespan: %w", err)
	}
	return full - daysBetween(*a.DateOfBirth, now), nil
}

func daysBetween(from, to time.Time) int64 {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int64(b.Sub(a).Hours() / 24)
}
