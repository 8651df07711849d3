// Package textscore measures how far recognised text is from the text an
// image is expected to contain.
package textscore

import (
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// Score holds error rates of a candidate against a reference. Rates are
// edit counts divided by the reference length and may exceed 1.
type Score struct {
	WER float64 `json:"word_error_rate"`
	CER float64 `json:"character_error_rate"`
}

// Normalize collapses runs of whitespace to single spaces and trims the ends
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordErrorRate is the word level edit distance over the reference word count
func WordErrorRate(reference, candidate string) float64 {
	ref := strings.Fields(reference)
	cand := strings.Fields(candidate)
	if len(ref) == 0 {
		return emptyReferenceRate(len(cand))
	}
	rate, _ := wer.WER(ref, cand)
	return rate
}

// CharacterErrorRate is the rune level edit distance over the reference
// length, after whitespace normalisation
func CharacterErrorRate(reference, candidate string) float64 {
	ref := Normalize(reference)
	cand := Normalize(candidate)
	n := len([]rune(ref))
	if n == 0 {
		return emptyReferenceRate(len(cand))
	}
	return float64(levenshtein.Distance(ref, cand)) / float64(n)
}

// Compare computes both rates
func Compare(reference, candidate string) Score {
	return Score{
		WER: WordErrorRate(reference, candidate),
		CER: CharacterErrorRate(reference, candidate),
	}
}

func emptyReferenceRate(candidateLen int) float64 {
	if candidateLen == 0 {
		return 0
	}
	return 1
}
