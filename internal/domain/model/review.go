package model

import (
	"math"
	"time"
)

const (
	MinReviewScore = 0
	MaxReviewScore = 10
)

type Review struct {
	ID                string    `json:"id"`
	SubmissionID      string    `json:"submissionId"`
	ReviewerID        string    `json:"reviewerId"`
	TechnicalScore    *float64  `json:"technicalScore,omitempty"`
	CreativityScore   *float64  `json:"creativityScore,omitempty"`
	UsabilityScore    *float64  `json:"usabilityScore,omitempty"`
	CompletenessScore *float64  `json:"completenessScore,omitempty"`
	OverallScore      *float64  `json:"overallScore,omitempty"`
	Comments          *string   `json:"comments,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type CreateReviewRequest struct {
	SubmissionID      string   `json:"submissionId"`
	TechnicalScore    *float64 `json:"technicalScore,omitempty"`
	CreativityScore   *float64 `json:"creativityScore,omitempty"`
	UsabilityScore    *float64 `json:"usabilityScore,omitempty"`
	CompletenessScore *float64 `json:"completenessScore,omitempty"`
	OverallScore      *float64 `json:"overallScore,omitempty"`
	Comments          *string  `json:"comments,omitempty"`
}

type ReviewPatch struct {
	TechnicalScore    *float64 `json:"technicalScore,omitempty"`
	CreativityScore   *float64 `json:"creativityScore,omitempty"`
	UsabilityScore    *float64 `json:"usabilityScore,omitempty"`
	CompletenessScore *float64 `json:"completenessScore,omitempty"`
	OverallScore      *float64 `json:"overallScore,omitempty"`
	Comments          *string  `json:"comments,omitempty"`
}

func (p ReviewPatch) Apply(r *Review) {
	if p.TechnicalScore != nil {
		r.TechnicalScore = p.TechnicalScore
	}
	if p.CreativityScore != nil {
		r.CreativityScore = p.CreativityScore
	}
	if p.UsabilityScore != nil {
		r.UsabilityScore = p.UsabilityScore
	}
	if p.CompletenessScore != nil {
		r.CompletenessScore = p.CompletenessScore
	}
	if p.OverallScore != nil {
		r.OverallScore = p.OverallScore
	}
	if p.Comments != nil {
		r.Comments = p.Comments
	}
}

// EvaluationScores are the five judging dimensions. Presentation has no column of its
// own and only contributes to the overall score. A nil field was not supplied.
type EvaluationScores struct {
	Innovation         *float64 `json:"innovation"`
	TechnicalExecution *float64 `json:"technicalExecution"`
	UserExperience     *float64 `json:"userExperience"`
	Presentation       *float64 `json:"presentation"`
	Impact             *float64 `json:"impact"`
}

func NewEvaluationScores(innovation, technicalExecution, userExperience, presentation, impact float64) EvaluationScores {
	return EvaluationScores{
		Innovation:         &innovation,
		TechnicalExecution: &technicalExecution,
		UserExperience:     &userExperience,
		Presentation:       &presentation,
		Impact:             &impact,
	}
}

// Complete reports whether every dimension was supplied.
func (s EvaluationScores) Complete() bool {
	return s.Innovation != nil && s.TechnicalExecution != nil && s.UserExperience != nil &&
		s.Presentation != nil && s.Impact != nil
}

// All returns the supplied scores in declaration order, skipping missing ones.
func (s EvaluationScores) All() []float64 {
	all := make([]float64, 0, 5)
	for _, v := range []*float64{s.Innovation, s.TechnicalExecution, s.UserExperience, s.Presentation, s.Impact} {
		if v != nil {
			all = append(all, *v)
		}
	}
	return all
}

// Overall is the unweighted mean of the five scores, rounded to two decimals.
// Callers check Complete first.
func (s EvaluationScores) Overall() float64 {
	var sum float64
	for _, v := range s.All() {
		sum += v
	}
	mean := sum / 5
	return math.Round(mean*100) / 100
}

// ApplyTo copies the scores onto the stored review columns.
func (s EvaluationScores) ApplyTo(r *Review) {
	technical, creativity, usability, completeness := *s.TechnicalExecution, *s.Innovation, *s.UserExperience, *s.Impact
	overall := s.Overall()
	r.TechnicalScore = &technical
	r.CreativityScore = &creativity
	r.UsabilityScore = &usability
	r.CompletenessScore = &completeness
	r.OverallScore = &overall
}

type EvaluateRequest struct {
	Status SubmissionStatus `json:"status"`
	Scores EvaluationScores `json:"scores"`
	Notes  *string          `json:"notes,omitempty"`
}

type EvaluationResult struct {
	Submission *Submission `json:"submission"`
	Review     *Review     `json:"review"`
}
