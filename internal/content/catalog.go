// Package content serves the embedded troubleshooting hub and onboarding quiz.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Video is an embedded tutorial attached to a section.
type Video struct {
	ID    string `json:"id"    yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Section is one troubleshooting article. Content is markdown.
type Section struct {
	ID       string `json:"id"              yaml:"id"`
	Title    string `json:"title"           yaml:"title"`
	Category string `json:"category"        yaml:"category"`
	Video    *Video `json:"video,omitempty" yaml:"video"`
	Content  string `json:"content"         yaml:"content"`
}

// QuestionType is how many options a quiz answer may select.
type QuestionType string

const (
	Single QuestionType = "single"
	Multi  QuestionType = "multi"
)

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type Question struct {
	ID       string       `json:"id"       yaml:"id"`
	Question string       `json:"question" yaml:"question"`
	Type     QuestionType `json:"type"     yaml:"type"`
	Options  []Option     `json:"options"  yaml:"options"`
}

func (q Question) hasOption(value string) bool {
	return slices.ContainsFunc(q.Options, func(o Option) bool { return o.Value == value })
}

// Catalog is the static site content.
type Catalog struct {
	Categories []string   `yaml:"categories"`
	Sections   []Section  `yaml:"sections"`
	Quiz       []Question `yaml:"quiz"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a catalog document and checks its internal references.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for _, s := range c.Sections {
		if !slices.Contains(c.Categories, s.Category) {
			return nil, fmt.Errorf("section %q: unknown category %q", s.ID, s.Category)
		}
	}

	for _, q := range c.Quiz {
		if q.Type != Single && q.Type != Multi {
			return nil, fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
		}
	}

	return &c, nil
}

// Search filters sections by exact category, then by a case-insensitive
// substring of title or content. Empty arguments do not filter.
func (c *Catalog) Search(query, category string) []Section {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Section, 0, len(c.Sections))

	for _, s := range c.Sections {
		if category != "" && s.Category != category {
			continue
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(s.Title), query) &&
			!strings.Contains(strings.ToLower(s.Content), query) {
			continue
		}

		out = append(out, s)
	}

	return out
}

// ErrInvalidAnswers wraps every quiz validation failure.
var ErrInvalidAnswers = errors.New("invalid quiz answers")

// ValidateAnswers checks a complete submission: every question answered,
// single questions with one known option, multi questions with a non-empty
// list of distinct known options, and no unknown questions. The returned map
// is normalized to string and []string values.
func (c *Catalog) ValidateAnswers(answers map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(c.Quiz))

	for id := range answers {
		if !slices.ContainsFunc(c.Quiz, func(q Question) bool { return q.ID == id }) {
			return nil, fmt.Errorf("%w: unknown question %q", ErrInvalidAnswers, id)
		}
	}

	for _, q := range c.Quiz {
		raw, ok := answers[q.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not answered", ErrInvalidAnswers, q.ID)
		}

		value, err := validateAnswer(q, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAnswers, q.ID, err)
		}

		out[q.ID] = value
	}

	return out, nil
}

func validateAnswer(q Question, raw any) (any, error) {
	if q.Type == Single {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("expected a single option")
		}

		if !q.hasOption(s) {
			return nil, fmt.Errorf("unknown option %q", s)
		}

		return s, nil
	}

	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, errors.New("expected at least one option")
	}

	values := make([]string, 0, len(list))

	for _, item := range list {
		s, ok := item.(string)
		if !ok || !q.hasOption(s) {
			return nil, fmt.Errorf("unknown option %v", item)
		}

		if slices.Contains(values, s) {
			return nil, fmt.Errorf("duplicate option %q", s)
		}

		values = append(values, s)
	}

	return values, nil
}
