// Package ielts holds the deterministic IELTS writing rules applied on top of a
// model assessment: task variants, penalties, score arithmetic and correction highlighting.
package ielts

import (
	"strings"
	"time"
)

// TaskType identifies an IELTS writing task variant.
type TaskType string

const (
	Task1 TaskType = "task1"
	Task2 TaskType = "task2"
)

// Valid reports whether the task type is a known variant.
func (t TaskType) Valid() bool {
	return t == Task1 || t == Task2
}

// MinWords returns the minimum word count expected for the variant.
func (t TaskType) MinWords() int {
	if t == Task1 {
		return 150
	}
	return 250
}

// TimeLimit returns the recommended writing time for the variant.
func (t TaskType) TimeLimit() time.Duration {
	if t == Task1 {
		return 20 * time.Minute
	}
	return 40 * time.Minute
}

// WordCount counts whitespace-delimited tokens of the trimmed text.
func WordCount(text string) int {
	return len(strings.Fields(strings.TrimSpace(text)))
}
