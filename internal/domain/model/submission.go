package model

import "time"

type SubmissionStatus string

const (
	SubmissionDraft       SubmissionStatus = "draft"
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionUnderReview SubmissionStatus = "under_review"
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionDraft, SubmissionSubmitted, SubmissionUnderReview, SubmissionAccepted, SubmissionRejected:
		return true
	}
	return false
}

// TeamSettable reports whether a team may move its own submission into s.
func (s SubmissionStatus) TeamSettable() bool {
	return s == SubmissionDraft || s == SubmissionSubmitted
}

// Evaluated reports whether s is a judging outcome.
func (s SubmissionStatus) Evaluated() bool {
	return s == SubmissionUnderReview || s == SubmissionAccepted || s == SubmissionRejected
}

const MaxSubmissionScore = 100

type Submission struct {
	ID            string           `json:"id"`
	TeamID        string           `json:"teamId"`
	ProblemID     string           `json:"problemId"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	RepositoryURL string           `json:"repositoryUrl"`
	DemoURL       *string          `json:"demoUrl,omitempty"`
	Technologies  StringList       `json:"technologies"`
	Screenshots   StringList       `json:"screenshots"`
	Status        SubmissionStatus `json:"status"`
	Feedback      *string          `json:"feedback,omitempty"`
	Score         *float64         `json:"score,omitempty"`
	SubmittedAt   *time.Time       `json:"submittedAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// MarkStatus sets the status and stamps SubmittedAt the first time the submission is submitted.
func (s *Submission) MarkStatus(status SubmissionStatus, now time.Time) {
	s.Status = status
	if status == SubmissionSubmitted && s.SubmittedAt == nil {
		t := now
		s.SubmittedAt = &t
	}
}

type CreateSubmissionRequest struct {
	TeamID        string           `json:"teamId"`
	ProblemID     string           `json:"problemId"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	RepositoryURL string           `json:"repositoryUrl"`
	DemoURL       *string          `json:"demoUrl,omitempty"`
	Technologies  StringList       `json:"technologies,omitempty"`
	Screenshots   StringList       `json:"screenshots,omitempty"`
	Status        SubmissionStatus `json:"status,omitempty"`
}

// SubmissionTeamPatch is what the owning team may change.
type SubmissionTeamPatch struct {
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	RepositoryURL *string           `json:"repositoryUrl,omitempty"`
	DemoURL       *string           `json:"demoUrl,omitempty"`
	Technologies  *StringList       `json:"technologies,omitempty"`
	Screenshots   *StringList       `json:"screenshots,omitempty"`
	Status        *SubmissionStatus `json:"status,omitempty"`
}

// SubmissionReviewerPatch is what judges and mentors may change.
type SubmissionReviewerPatch struct {
	Feedback *string           `json:"feedback,omitempty"`
	Score    *float64          `json:"score,omitempty"`
	Status   *SubmissionStatus `json:"status,omitempty"`
}

type SubmissionAdminPatch struct {
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	RepositoryURL *string           `json:"repositoryUrl,omitempty"`
	DemoURL       *string           `json:"demoUrl,omitempty"`
	Technologies  *StringList       `json:"technologies,omitempty"`
	Screenshots   *StringList       `json:"screenshots,omitempty"`
	Feedback      *string           `json:"feedback,omitempty"`
	Score         *float64          `json:"score,omitempty"`
	Status        *SubmissionStatus `json:"status,omitempty"`
}

func (p SubmissionTeamPatch) Apply(s *Submission, now time.Time) {
	SubmissionAdminPatch{
		Title:         p.Title,
		Description:   p.Description,
		RepositoryURL: p.RepositoryURL,
		DemoURL:       p.DemoURL,
		Technologies:  p.Technologies,
		Screenshots:   p.Screenshots,
		Status:        p.Status,
	}.Apply(s, now)
}

func (p SubmissionReviewerPatch) Apply(s *Submission, now time.Time) {
	SubmissionAdminPatch{Feedback: p.Feedback, Score: p.Score, Status: p.Status}.Apply(s, now)
}

func (p SubmissionAdminPatch) Apply(s *Submission, now time.Time) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.RepositoryURL != nil {
		s.RepositoryURL = *p.RepositoryURL
	}
	if p.DemoURL != nil {
		s.DemoURL = p.DemoURL
	}
	if p.Technologies != nil {
		s.Technologies = *p.Technologies
	}
	if p.Screenshots != nil {
		s.Screenshots = *p.Screenshots
	}
	if p.Feedback != nil {
		s.Feedback = p.Feedback
	}
	if p.Score != nil {
		s.Score = p.Score
	}
	if p.Status != nil {
		s.MarkStatus(*p.Status, now)
	}
}
