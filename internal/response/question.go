package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedQuestion means the backend text did not hold a question object
// matching the expected schema.
var ErrMalformedQuestion = errors.New("response: malformed question")

// WrongOptionCount is the number of decoys a question carries.
const WrongOptionCount = 3

// Draft is a quiz question as proposed by the backend, before it is given an
// id and stored.
type Draft struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	WrongOptions  []string `json:"wrong_options"`
	Explanation   string   `json:"explanation"`
}

var requiredFields = []string{"question", "correct_answer", "wrong_options", "explanation"}

// ParseQuestion decodes the JSON object spanning the first '{' to the last
// '}' of raw. Every required field must be present with the right type, the
// question must be non-empty and exactly WrongOptionCount decoys are allowed.
func ParseQuestion(raw string) (Draft, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Draft{}, fmt.Errorf("%w: no JSON object found", ErrMalformedQuestion)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}

	var missing []string
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Draft{}, fmt.Errorf("%w: missing %s", ErrMalformedQuestion, strings.Join(missing, ", "))
	}

	var d Draft
	targets := map[string]any{
		"question":       &d.Question,
		"correct_answer": &d.CorrectAnswer,
		"wrong_options":  &d.WrongOptions,
		"explanation":    &d.Explanation,
	}
	for _, name := range requiredFields {
		if err := json.Unmarshal(fields[name], targets[name]); err != nil {
			return Draft{}, fmt.Errorf("%w: field %s: %v", ErrMalformedQuestion, name, err)
		}
	}

	if strings.TrimSpace(d.Question) == "" {
		return Draft{}, fmt.Errorf("%w: empty question", ErrMalformedQuestion)
	}
	if len(d.WrongOptions) != WrongOptionCount {
		return Draft{}, fmt.Errorf("%w: want %d wrong options, got %d", ErrMalformedQuestion, WrongOptionCount, len(d.WrongOptions))
	}
	return d, nil
}
