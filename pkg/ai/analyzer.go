package ai

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

// EssayAnalyzer asks a Completer to grade an essay and turns the reply into an Assessment.
type EssayAnalyzer struct {
	completer Completer
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewEssayAnalyzer constructs an analyzer around the given completer.
func NewEssayAnalyzer(completer Completer, logger zerolog.Logger) *EssayAnalyzer {
	return &EssayAnalyzer{
		completer: completer,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "essay_analyzer").Logger(),
	}
}

// Analyze grades the essay. Completer failures surface as *AnalysisError and malformed
// replies as *ValidationError; neither is retried.
func (a *EssayAnalyzer) Analyze(ctx context.Context, essay string, task ielts.TaskType) (Assessment, error) {
	content, err := a.completer.Complete(ctx, SystemPrompt(), UserPrompt(essay, task))
	if err != nil {
		a.logger.Error().Err(err).Str("task_type", string(task)).Msg("essay analysis failed")
		return Assessment{}, &AnalysisError{Err: err}
	}

	assessment, err := parseAssessment(content)
	if err != nil {
		a.logger.Warn().Err(err).Str("task_type", string(task)).Msg("essay analysis returned malformed response")
		return Assessment{}, err
	}

	assessment.Feedback = ielts.Feedback{
		TaskAchievement:   a.clean(assessment.Feedback.TaskAchievement),
		CoherenceCohesion: a.clean(assessment.Feedback.CoherenceCohesion),
		LexicalResource:   a.clean(assessment.Feedback.LexicalResource),
		GrammaticalRange:  a.clean(assessment.Feedback.GrammaticalRange),
	}
	assessment.Corrections = ielts.ResolvePositions(essay, assessment.Corrections).Normalize()

	return assessment, nil
}

// clean strips markup from model feedback while keeping plain-text punctuation intact.
func (a *EssayAnalyzer) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(a.sanitizer.Sanitize(text)))
}
