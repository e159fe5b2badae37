package service

import (
	"time"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

const day = 24 * time.Hour

func dateOnly(t time.Time) time.Time {
	return models.DateOnly(t)
}

func addDays(t time.Time, n int) time.Time {
	return dateOnly(t).AddDate(0, 0, n)
}

// weekBounds returns the inclusive first and last day of a horizon week.
func weekBounds(horizonStart time.Time, weekOffset int) (time.Time, time.Time) {
	start := addDays(horizonStart, 7*weekOffset)
	return start, addDays(start, 6)
}

// weekOffsetOf returns which horizon week a date falls into, or -1 when outside.
func weekOffsetOf(horizonStart time.Time, weeks int, date time.Time) int {
	diff := int(dateOnly(date).Sub(dateOnly(horizonStart)) / day)
	if diff < 0 {
		return -1
	}
	week := diff / 7
	if week >= weeks {
		return -1
	}
	return week
}
