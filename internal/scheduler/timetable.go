package scheduler

import "time"

// Job ids. These are also the kind recorded in job logs and the ids the
// admin trigger endpoint accepts.
const (
	JobNews      = "news"
	JobPosts     = "social_posts"
	JobMentions  = "social_mentions"
	JobTrending  = "trending"
	JobRetention = "retention"
	JobGazette   = "gazette"
)

// Timetable spreads the daily jobs out from the base collection time so
// the providers are never hit by everything at once. The gazette scrape
// is weekly, early Sunday.
func Timetable(baseHour, baseMinute int) map[string]Schedule {
	sunday := time.Sunday
	return map[string]Schedule{
		JobNews:      at(baseHour, baseMinute),
		JobPosts:     at(baseHour, baseMinute+45),
		JobMentions:  at(baseHour+1, baseMinute),
		JobTrending:  at(baseHour+2, baseMinute),
		JobRetention: at(baseHour+2, baseMinute+15),
		JobGazette:   {Hour: 3, Minute: 0, Weekday: &sunday},
	}
}

// at normalizes minute and hour overflow into a valid clock time.
func at(hour, minute int) Schedule {
	hour += minute / 60
	minute %= 60
	hour %= 24
	return Schedule{Hour: hour, Minute: minute}
}
