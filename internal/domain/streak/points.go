package streak

import (
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/dateutil"
)

var pointTable = map[entity.StreakEventType]int{
	entity.VerseSave:         10,
	entity.VerseSaveWithNote: 20,
	entity.PostContent:       15,
	entity.CellMessage:       5,
	entity.CourseComplete:    50,
}

// Points returns the fixed point value of an event type.
func Points(eventType entity.StreakEventType) (int, bool) {
	points, ok := pointTable[eventType]
	return points, ok
}

// Advance applies one qualifying event happening on today to the record.
//
// The streak is unchanged when the user was already active today, grows by
// one when the user was last active yesterday and restarts at 1 otherwise.
// Points always accrue.
func Advance(record entity.StreakRecord, today dateutil.Date, points int) entity.StreakRecord {
	switch {
	case !record.LastActiveDate.IsZero() && record.LastActiveDate.Equal(today):
		// Same day. Guard against a broken record carrying a zero streak.
		if record.CurrentStreak == 0 {
			record.CurrentStreak = 1
		}

	case !record.LastActiveDate.IsZero() && record.LastActiveDate.AddDays(1).Equal(today):
		record.CurrentStreak++

	default:
		record.CurrentStreak = 1
	}

	if record.CurrentStreak > record.LongestStreak {
		record.LongestStreak = record.CurrentStreak
	}

	record.TotalPoints += int64(points)
	record.LastActiveDate = today
	return record
}

// IsAtRisk reports whether the streak ends unless the user is active today.
func IsAtRisk(record entity.StreakRecord, today dateutil.Date) bool {
	return record.CurrentStreak > 0 &&
		!record.LastActiveDate.IsZero() &&
		record.LastActiveDate.AddDays(1).Equal(today)
}
