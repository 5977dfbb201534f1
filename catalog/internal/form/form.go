// Package form turns raw form submissions into sanitized values and
// field-level error messages.
//
// A submission is processed by a Pipeline: an ordered list of steps run in
// sequence where the first step returning an error stops the chain.
// Typical pipelines normalize multi-valued fields, apply one Chain of
// sanitizers and checks per field, and end with Check, which fails with a
// *ValidationError when any field was rejected.
package form

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Astemirdum/local-library/pkg/validate"
)

type FieldError struct {
	Field   string
	Message string
	Value   string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Submission holds the values of a form as they are being sanitized.
type Submission struct {
	values url.Values
	multi  map[string]bool
	Errors []FieldError
}

func newSubmission(values url.Values) *Submission {
	cp := make(url.Values, len(values))
	for k, v := range values {
		cp[k] = append([]string(nil), v...)
	}
	return &Submission{values: cp, multi: make(map[string]bool)}
}

func (s *Submission) Get(field string) string {
	return s.values.Get(field)
}

func (s *Submission) All(field string) []string {
	return s.values[field]
}

// Date returns the parsed value of a date field, or nil if it is empty or
// not a date.
func (s *Submission) Date(field string) *time.Time {
	v := s.Get(field)
	if v == "" {
		return nil
	}
	t, err := validate.ParseISO8601(v)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Submission) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *Submission) addError(field, msg, value string) {
	s.Errors = append(s.Errors, FieldError{Field: field, Message: msg, Value: value})
}

type Step func(s *Submission) error

type Pipeline []Step

func (p Pipeline) Run(values url.Values) (*Submission, error) {
	s := newSubmission(values)
	for _, step := range p {
		if err := step(s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Multi normalizes field to an ordered list: absent becomes empty, a lone
// value becomes a one-element list, several values pass through. Chains
// then apply to every element.
func Multi(field string) Step {
	return func(s *Submission) error {
		if _, ok := s.values[field]; !ok {
			s.values[field] = []string{}
		}
		s.multi[field] = true
		return nil
	}
}

// Check rejects the submission if any field error was recorded.
func Check(s *Submission) error {
	if s.HasErrors() {
		return &ValidationError{Fields: s.Errors}
	}
	return nil
}
