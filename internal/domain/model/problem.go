package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

type Resource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type Milestone struct {
	Phase    string `json:"phase" yaml:"phase"`
	Deadline string `json:"deadline" yaml:"deadline"`
}

type Criterion struct {
	Criteria string `json:"criteria" yaml:"criteria"`
	Weight   int    `json:"weight" yaml:"weight"`
}

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Typed JSONB columns. Each round-trips through encoding/json and never stores NULL.
type (
	StringList []string
	Resources  []Resource
	Timeline   []Milestone
	Evaluation []Criterion
	FAQs       []FAQ
)

func (l StringList) Value() (driver.Value, error) { return jsonValue(l, len(l)) }
func (r Resources) Value() (driver.Value, error)  { return jsonValue(r, len(r)) }
func (t Timeline) Value() (driver.Value, error)   { return jsonValue(t, len(t)) }
func (e Evaluation) Value() (driver.Value, error) { return jsonValue(e, len(e)) }
func (f FAQs) Value() (driver.Value, error)       { return jsonValue(f, len(f)) }

func (l *StringList) Scan(src interface{}) error { return jsonScan(src, l) }
func (r *Resources) Scan(src interface{}) error  { return jsonScan(src, r) }
func (t *Timeline) Scan(src interface{}) error   { return jsonScan(src, t) }
func (e *Evaluation) Scan(src interface{}) error { return jsonScan(src, e) }
func (f *FAQs) Scan(src interface{}) error       { return jsonScan(src, f) }

func jsonValue(v interface{}, n int) (driver.Value, error) {
	if n == 0 {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonScan(src interface{}, dest interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

type Problem struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Category        string     `json:"category"`
	Description     string     `json:"description"`
	LongDescription *string    `json:"longDescription,omitempty"`
	Difficulty      int        `json:"difficulty"`
	Prize           string     `json:"prize"`
	Color           string     `json:"color"`
	Requirements    StringList `json:"requirements"`
	Resources       Resources  `json:"resources"`
	Timeline        Timeline   `json:"timeline"`
	Evaluation      Evaluation `json:"evaluation"`
	FAQs            FAQs       `json:"faqs"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ProblemPatch struct {
	Title           *string     `json:"title,omitempty"`
	Slug            *string     `json:"slug,omitempty"`
	Category        *string     `json:"category,omitempty"`
	Description     *string     `json:"description,omitempty"`
	LongDescription *string     `json:"longDescription,omitempty"`
	Difficulty      *int        `json:"difficulty,omitempty"`
	Prize           *string     `json:"prize,omitempty"`
	Color           *string     `json:"color,omitempty"`
	Requirements    *StringList `json:"requirements,omitempty"`
	Resources       *Resources  `json:"resources,omitempty"`
	Timeline        *Timeline   `json:"timeline,omitempty"`
	Evaluation      *Evaluation `json:"evaluation,omitempty"`
	FAQs            *FAQs       `json:"faqs,omitempty"`
	IsActive        *bool       `json:"isActive,omitempty"`
}

func (p ProblemPatch) Apply(pr *Problem) {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.Slug != nil {
		pr.Slug = *p.Slug
	}
	if p.Category != nil {
		pr.Category = *p.Category
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.LongDescription != nil {
		pr.LongDescription = p.LongDescription
	}
	if p.Difficulty != nil {
		pr.Difficulty = *p.Difficulty
	}
	if p.Prize != nil {
		pr.Prize = *p.Prize
	}
	if p.Color != nil {
		pr.Color = *p.Color
	}
	if p.Requirements != nil {
		pr.Requirements = *p.Requirements
	}
	if p.Resources != nil {
		pr.Resources = *p.Resources
	}
	if p.Timeline != nil {
		pr.Timeline = *p.Timeline
	}
	if p.Evaluation != nil {
		pr.Evaluation = *p.Evaluation
	}
	if p.FAQs != nil {
		pr.FAQs = *p.FAQs
	}
	if p.IsActive != nil {
		pr.IsActive = *p.IsActive
	}
}
