package ielts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Correction categories returned by the analyzer.
const (
	CategoryGrammar    = "grammar"
	CategoryVocabulary = "vocabulary"
	CategoryStructure  = "structure"
)

// Correction is a single reviewer note. Grammar entries use Original/Correction,
// vocabulary entries Original/Suggestion, structure entries Issue/Suggestion/Example.
type Correction struct {
	Original    string         `json:"original,omitempty"`
	Correction  string         `json:"correction,omitempty"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
	Issue       string         `json:"issue,omitempty"`
	Example     string         `json:"example,omitempty"`
	Positions   []TextPosition `json:"positions,omitempty"`
	// Extra keeps any other keys the analyzer attached so they survive storage.
	Extra map[string]json.RawMessage `json:"-"`
}

type correctionFields Correction

var correctionKeys = []string{"original", "correction", "suggestion", "explanation", "issue", "example", "positions"}

// MarshalJSON writes the known fields merged over Extra.
func (c Correction) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(correctionFields(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}

	merged := make(map[string]json.RawMessage, len(c.Extra)+len(correctionKeys))
	for key, value := range c.Extra {
		merged[key] = value
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the known fields and moves every other key into Extra.
func (c *Correction) UnmarshalJSON(data []byte) error {
	var fields correctionFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range correctionKeys {
		delete(all, key)
	}

	fields.Extra = nil
	if len(all) > 0 {
		fields.Extra = all
	}
	*c = Correction(fields)
	return nil
}

// Corrections groups reviewer notes by category.
type Corrections struct {
	Grammar    []Correction `json:"grammar"`
	Vocabulary []Correction `json:"vocabulary"`
	Structure  []Correction `json:"structure"`
}

// Normalize replaces nil categories with empty lists.
func (c Corrections) Normalize() Corrections {
	if c.Grammar == nil {
		c.Grammar = []Correction{}
	}
	if c.Vocabulary == nil {
		c.Vocabulary = []Correction{}
	}
	if c.Structure == nil {
		c.Structure = []Correction{}
	}
	return c
}

// Total returns the number of entries across all categories.
func (c Corrections) Total() int {
	return len(c.Grammar) + len(c.Vocabulary) + len(c.Structure)
}

//go:embed corrections.schema.json
var correctionsSchemaSource string

var correctionsSchema = jsonschema.MustCompileString("corrections.schema.json", correctionsSchemaSource)

// EncodeCorrections serializes corrections for storage after validating the payload shape.
func EncodeCorrections(c Corrections) ([]byte, error) {
	raw, err := json.Marshal(c.Normalize())
	if err != nil {
		return nil, fmt.Errorf("encode corrections: %w", err)
	}
	if err := validateCorrections(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DecodeCorrections rehydrates a stored payload. An empty payload decodes to empty lists.
func DecodeCorrections(raw []byte) (Corrections, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Corrections{}.Normalize(), nil
	}
	if err := validateCorrections(raw); err != nil {
		return Corrections{}, err
	}

	var c Corrections
	if err := json.Unmarshal(raw, &c); err != nil {
		return Corrections{}, fmt.Errorf("decode corrections: %w", err)
	}
	return c.Normalize(), nil
}

func validateCorrections(raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode corrections: %w", err)
	}
	if err := correctionsSchema.Validate(doc); err != nil {
		return fmt.Errorf("corrections payload invalid: %w", err)
	}
	return nil
}
