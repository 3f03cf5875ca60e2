package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerSet maps a 0-based question index to the answer text.
// Its JSON form is an object keyed by the stringified index.
type AnswerSet map[int]string

// Get returns the stored answer for index i.
func (a AnswerSet) Get(i int) (string, bool) {
	text, ok := a[i]
	return text, ok
}

// Clone returns an independent copy of the set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// StringKeys returns the set keyed by stringified index, the shape used on
// the wire and in stored answer files.
func (a AnswerSet) StringKeys() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[strconv.Itoa(k)] = v
	}
	return out
}

// AnswersFromStringKeys converts a wire-shaped map into an AnswerSet,
// dropping entries whose key is not an index in [0, n).
func AnswersFromStringKeys(m map[string]string, n int) AnswerSet {
	out := make(AnswerSet, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			continue
		}
		out[i] = v
	}
	return out
}

// Encode serializes the set. Keys are emitted in sorted order so identical
// sets always encode to identical bytes.
func (a AnswerSet) Encode() ([]byte, error) {
	return json.Marshal(a.StringKeys())
}

// DecodeAnswerSet parses a stored answer set for a questionnaire of n
// questions. Data that is not a JSON object of strings is an error.
func DecodeAnswerSet(data []byte, n int) (AnswerSet, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode answer set: %w", err)
	}
	return AnswersFromStringKeys(raw, n), nil
}
