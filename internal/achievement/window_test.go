package achievement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flockhq/flock/internal/achievement"
)

func TestMonthWindowOf(t *testing.T) {
	ref := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	w := achievement.MonthWindowOf(ref, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), w.End)
}

func TestMonthWindowOf_February(t *testing.T) {
	// 2024 is a leap year.
	w := achievement.MonthWindowOf(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), w.End)
}

func TestPreviousMonthWindowOf(t *testing.T) {
	ref := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	w := achievement.PreviousMonthWindowOf(ref, time.UTC)

	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC), w.End)
}

func TestPreviousMonthWindowOf_YearBoundary(t *testing.T) {
	ref := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	w := achievement.PreviousMonthWindowOf(ref, time.UTC)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), w.End)
}
