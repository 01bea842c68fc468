package ielts

import (
	"math"
	"strconv"
)

// Criteria lists the four IELTS writing assessment criteria in report order.
var Criteria = []string{
	"task_achievement",
	"coherence_cohesion",
	"lexical_resource",
	"grammatical_range",
}

// BandScores are the four criterion scores returned by an assessment.
type BandScores struct {
	TaskAchievement   float64 `json:"task_achievement"`
	CoherenceCohesion float64 `json:"coherence_cohesion"`
	LexicalResource   float64 `json:"lexical_resource"`
	GrammaticalRange  float64 `json:"grammatical_range"`
}

// Values returns the scores in Criteria order.
func (b BandScores) Values() []float64 {
	return []float64{b.TaskAchievement, b.CoherenceCohesion, b.LexicalResource, b.GrammaticalRange}
}

// Feedback holds the examiner commentary for each criterion.
type Feedback struct {
	TaskAchievement   string `json:"task_achievement"`
	CoherenceCohesion string `json:"coherence_cohesion"`
	LexicalResource   string `json:"lexical_resource"`
	GrammaticalRange  string `json:"grammatical_range"`
}

// Round1 rounds the exact binary value to one decimal place. Only values exactly halfway
// between two tenths go to the even digit; 0.35 is stored below the half and rounds to 0.3.
func Round1(value float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 1, 64), 64)
	if err != nil {
		return math.NaN()
	}
	return rounded
}

// OverallScore is the mean of the four criterion scores rounded to one decimal.
func OverallScore(scores BandScores) float64 {
	values := scores.Values()
	var total float64
	for _, v := range values {
		total += v
	}
	return Round1(total / float64(len(values)))
}

// AdjustedScore subtracts both penalties from the overall score, never going below zero.
func AdjustedScore(overall, wordCountPenalty, timePenalty float64) float64 {
	return math.Max(0, overall-wordCountPenalty-timePenalty)
}

// CombinedScore weights task 1 by one third and task 2 by two thirds.
func CombinedScore(task1Adjusted, task2Adjusted float64) float64 {
	return Round1(task1Adjusted*1/3 + task2Adjusted*2/3)
}
