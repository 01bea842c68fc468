package ai

import (
	"context"
	"fmt"

	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

// Completer is a reasoning service that answers a system instruction and a user message
// with free-form text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Assessment is the validated examiner output for one essay.
type Assessment struct {
	Scores      ielts.BandScores  `json:"scores"`
	Feedback    ielts.Feedback    `json:"feedback"`
	Corrections ielts.Corrections `json:"corrections"`
}

// Analyzer produces an assessment for an essay of the given task variant.
type Analyzer interface {
	Analyze(ctx context.Context, essay string, task ielts.TaskType) (Assessment, error)
}

// ValidationError reports a completer response that does not match the assessment schema.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response format: %s", e.Reason)
}

// AnalysisError wraps a transport or service failure from the completer.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("failed to analyze essay: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
