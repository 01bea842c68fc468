package ielts

import (
	"strings"
	"unicode/utf8"
)

// TextPosition locates one occurrence of a correction's original text within the essay.
// Offsets count characters, not bytes.
type TextPosition struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// ResolvePositions attaches highlight spans to grammar and vocabulary corrections.
// Structure corrections are not anchored to essay text and pass through untouched.
func ResolvePositions(essay string, corrections Corrections) Corrections {
	return Corrections{
		Grammar:    resolveCategory(essay, corrections.Grammar),
		Vocabulary: resolveCategory(essay, corrections.Vocabulary),
		Structure:  copyCorrections(corrections.Structure),
	}
}

func resolveCategory(essay string, entries []Correction) []Correction {
	resolved := make([]Correction, 0, len(entries))
	for _, entry := range entries {
		if entry.Original == "" {
			resolved = append(resolved, entry)
			continue
		}

		positions := FindOccurrences(essay, entry.Original)
		if len(positions) > 0 {
			entry.Positions = positions
		}
		resolved = append(resolved, entry)
	}
	return resolved
}

// FindOccurrences returns every literal occurrence of needle in text, scanning forward
// from one character past each previous match start so overlapping matches are kept.
func FindOccurrences(text, needle string) []TextPosition {
	if needle == "" {
		return nil
	}

	needleLen := utf8.RuneCountInString(needle)
	var positions []TextPosition

	byteOffset := 0
	runeOffset := 0
	for byteOffset <= len(text) {
		idx := strings.Index(text[byteOffset:], needle)
		if idx < 0 {
			break
		}

		matchByte := byteOffset + idx
		matchRune := runeOffset + utf8.RuneCountInString(text[byteOffset:matchByte])
		positions = append(positions, TextPosition{
			Start: matchRune,
			End:   matchRune + needleLen,
			Text:  needle,
		})

		_, size := utf8.DecodeRuneInString(text[matchByte:])
		byteOffset = matchByte + size
		runeOffset = matchRune + 1
	}

	return positions
}

func copyCorrections(entries []Correction) []Correction {
	out := make([]Correction, len(entries))
	copy(out, entries)
	return out
}
