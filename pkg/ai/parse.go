package ai

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

var requiredKeys = []string{"scores", "feedback", "corrections"}

func parseAssessment(content string) (Assessment, error) {
	if !gjson.Valid(content) {
		return Assessment{}, &ValidationError{Reason: "failed to parse response as JSON"}
	}

	doc := gjson.Parse(content)
	if !doc.IsObject() {
		return Assessment{}, &ValidationError{Reason: "failed to parse response as JSON"}
	}

	for _, key := range requiredKeys {
		if !doc.Get(key).Exists() {
			return Assessment{}, &ValidationError{Reason: "missing required keys"}
		}
	}

	scores := doc.Get("scores")
	for _, key := range ielts.Criteria {
		if !scores.Get(key).Exists() {
			return Assessment{}, &ValidationError{Reason: "missing score keys"}
		}
	}
	for _, key := range ielts.Criteria {
		if scores.Get(key).Type != gjson.Number {
			return Assessment{}, &ValidationError{Reason: fmt.Sprintf("score %s is not numeric", key)}
		}
	}

	feedback := doc.Get("feedback")
	for _, key := range ielts.Criteria {
		if !feedback.Get(key).Exists() {
			return Assessment{}, &ValidationError{Reason: "missing feedback keys"}
		}
	}

	if !doc.Get("corrections").IsObject() {
		return Assessment{}, &ValidationError{Reason: "missing corrections"}
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(content), &assessment); err != nil {
		return Assessment{}, &ValidationError{Reason: err.Error()}
	}

	return assessment, nil
}
