package ielts

import "math"

const (
	wordsPerPenaltyStep  = 25
	wordPenaltyPerStep   = 0.5
	maxWordCountPenalty  = 2.0
	timePenaltyPerMinute = 0.1
	maxTimePenalty       = 1.0
)

// WordCountPenalty deducts 0.5 band per 25 words below the variant minimum, capped at 2.0.
func WordCountPenalty(wordCount int, task TaskType) float64 {
	minimum := task.MinWords()
	if wordCount >= minimum {
		return 0
	}

	short := float64(minimum - wordCount)
	penalty := short / wordsPerPenaltyStep * wordPenaltyPerStep
	return math.Min(penalty, maxWordCountPenalty)
}

// TimePenalty deducts 0.1 band per minute over the variant time limit, capped at 1.0.
// A nil or zero time spent means the time was not tracked.
func TimePenalty(timeSpentSeconds *int, task TaskType) float64 {
	if timeSpentSeconds == nil || *timeSpentSeconds == 0 {
		return 0
	}

	limit := task.TimeLimit().Seconds()
	spent := float64(*timeSpentSeconds)
	if spent <= limit {
		return 0
	}

	minutesOver := (spent - limit) / 60
	return math.Min(minutesOver*timePenaltyPerMinute, maxTimePenalty)
}
