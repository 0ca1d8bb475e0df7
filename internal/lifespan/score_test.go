package lifespan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingDaysSegments(t *testing.T) {
	cases := []struct {
		score int
		days  float64
	}{
		{1000, 73000},
		{900, 62050},
		{841, 55589.5},
		{840, 54750},
		{839, 54677},
		{740, 47450},
		{739, 47340.5},
		{640, 36500},
		{639, 36463.5},
		{0, 13140},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.days, RemainingDays(tc.score), 1e-9, "score %d", tc.score)
	}
}

func TestRemainingDaysMonotonic(t *testing.T) {
	prev := RemainingDays(MinScore)
	for s := MinScore + 1; s <= MaxScore; s++ {
		cur := RemainingDays(s)
		assert.GreaterOrEqual(t, cur, prev, "score %d", s)
		prev = cur
	}
}

func TestRemainingDaysContinuousFromBelow(t *testing.T) {
	// each lower segment extended to its upper breakpoint meets the value there
	assert.InDelta(t, RemainingDays(640), 36500-(640-640)*36.5, 1e-9)
	assert.InDelta(t, RemainingDays(740), 47450-(740-740)*109.5, 1e-9)
	assert.InDelta(t, RemainingDays(840), 54750-(840-840)*73, 1e-9)

	// neighbours step by exactly the lower segment's slope
	assert.InDelta(t, 36.5, RemainingDays(640)-RemainingDays(639), 1e-9)
	assert.InDelta(t, 109.5, RemainingDays(740)-RemainingDays(739), 1e-9)
	assert.InDelta(t, 73, RemainingDays(840)-RemainingDays(839), 1e-9)
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(1000))
	assert.False(t, ValidScore(-1))
	assert.False(t, ValidScore(1001))
}
