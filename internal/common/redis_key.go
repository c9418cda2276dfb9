package common

import "fmt"

const RedisKeyPointsLeaderboard = "points:leaderboard"

func RedisKeyStreakReminder(date, userID string) string {
	return fmt.Sprintf("streakreminder:%s:%s", date, userID)
}
