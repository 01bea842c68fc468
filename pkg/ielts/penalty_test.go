package ielts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPointer(v int) *int {
	return &v
}

func TestWordCountPenaltyZeroAtOrAboveMinimum(t *testing.T) {
	for _, wc := range []int{150, 151, 400} {
		require.Zero(t, WordCountPenalty(wc, Task1), "task1 word count %d", wc)
	}
	for _, wc := range []int{250, 251, 900} {
		require.Zero(t, WordCountPenalty(wc, Task2), "task2 word count %d", wc)
	}
}

func TestWordCountPenaltyScalesAndCaps(t *testing.T) {
	require.InDelta(t, 1.0, WordCountPenalty(100, Task1), 1e-9)
	require.InDelta(t, 0.5, WordCountPenalty(225, Task2), 1e-9)
	require.InDelta(t, 0.02, WordCountPenalty(149, Task1), 1e-9)
	require.Equal(t, 2.0, WordCountPenalty(0, Task1))
	require.Equal(t, 2.0, WordCountPenalty(0, Task2))
}

func TestWordCountPenaltyIsMonotonic(t *testing.T) {
	previous := WordCountPenalty(0, Task2)
	for wc := 1; wc <= 300; wc++ {
		current := WordCountPenalty(wc, Task2)
		require.LessOrEqual(t, current, previous, "word count %d", wc)
		previous = current
	}
}

func TestTimePenalty(t *testing.T) {
	require.Zero(t, TimePenalty(nil, Task2))
	require.Zero(t, TimePenalty(intPointer(0), Task2))
	require.Zero(t, TimePenalty(intPointer(1200), Task1))
	require.Zero(t, TimePenalty(intPointer(2400), Task2))
	require.InDelta(t, 1.0, TimePenalty(intPointer(3000), Task2), 1e-9)
	require.InDelta(t, 0.5, TimePenalty(intPointer(1500), Task1), 1e-9)
	require.InDelta(t, 0.05, TimePenalty(intPointer(1230), Task1), 1e-9)
	require.Equal(t, 1.0, TimePenalty(intPointer(7200), Task1))
}

func TestTimePenaltyDoesNotMutateInput(t *testing.T) {
	spent := 3000
	TimePenalty(&spent, Task2)
	require.Equal(t, 3000, spent)
}

func TestTaskTypeTable(t *testing.T) {
	require.True(t, Task1.Valid())
	require.True(t, Task2.Valid())
	require.False(t, TaskType("task3").Valid())
	require.Equal(t, 150, Task1.MinWords())
	require.Equal(t, 250, Task2.MinWords())
}

func TestWordCount(t *testing.T) {
	require.Equal(t, 0, WordCount("   "))
	require.Equal(t, 6, WordCount("  the cat\tsat\non the mat  "))
}
