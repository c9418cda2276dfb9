package entity

type BadgeCriteria string

const (
	CriteriaVersesSaved      = BadgeCriteria("verses_saved")
	CriteriaContentPosted    = BadgeCriteria("content_posted")
	CriteriaCellsJoined      = BadgeCriteria("cells_joined")
	CriteriaCoursesCompleted = BadgeCriteria("courses_completed")
	CriteriaStreakDays       = BadgeCriteria("streak_days")
	CriteriaTotalPoints      = BadgeCriteria("total_points")
	CriteriaFriends          = BadgeCriteria("friends")
	CriteriaFirstEvent       = BadgeCriteria("first_event")
)

type Badge struct {
	Base
	Name          string        `gorm:"unique;not null"`
	Description   string
	CriteriaType  BadgeCriteria `gorm:"index;not null"`
	CriteriaValue int           `gorm:"not null"`
	IconURL       string
}
