package model

import "time"

type TeamStatus string
type Gender string

const (
	TeamPending  TeamStatus = "pending"
	TeamApproved TeamStatus = "approved"
	TeamRejected TeamStatus = "rejected"

	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (s TeamStatus) Valid() bool {
	return s == TeamPending || s == TeamApproved || s == TeamRejected
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type Team struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	RepositoryURL     *string    `json:"repositoryUrl,omitempty"`
	TeamSize          int        `json:"teamSize"`
	LookingForMembers bool       `json:"lookingForMembers"`
	ProblemID         *string    `json:"problemId,omitempty"`
	Status            TeamStatus `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type TeamMember struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"teamId"`
	UserID   string    `json:"userId"`
	IsLeader bool      `json:"isLeader"`
	Gender   Gender    `json:"gender"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberProfile is a team member's user record joined with the membership row.
type MemberProfile struct {
	User
	IsLeader bool      `json:"isLeader"`
	Gender   Gender    `json:"gender"`
	JoinedAt time.Time `json:"joinedAt"`
}

type TeamWithMembers struct {
	Team
	Members []MemberProfile `json:"members"`
}

type SubmissionWithReviews struct {
	Submission
	Reviews []Review `json:"reviews"`
}

type TeamDetails struct {
	Team
	Members     []MemberProfile         `json:"members"`
	Problem     *Problem                `json:"problem"`
	Submissions []SubmissionWithReviews `json:"submissions"`
}

// TeamPatch holds the fields a team leader may change.
type TeamPatch struct {
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	RepositoryURL     *string `json:"repositoryUrl,omitempty"`
	TeamSize          *int    `json:"teamSize,omitempty"`
	LookingForMembers *bool   `json:"lookingForMembers,omitempty"`
	ProblemID         *string `json:"problemId,omitempty"`
}

// TeamAdminPatch adds the admin-only status transition.
type TeamAdminPatch struct {
	TeamPatch
	Status *TeamStatus `json:"status,omitempty"`
}

func (p TeamPatch) Apply(t *Team) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.RepositoryURL != nil {
		t.RepositoryURL = p.RepositoryURL
	}
	if p.TeamSize != nil {
		t.TeamSize = *p.TeamSize
	}
	if p.LookingForMembers != nil {
		t.LookingForMembers = *p.LookingForMembers
	}
	if p.ProblemID != nil {
		if *p.ProblemID == "" {
			t.ProblemID = nil
		} else {
			t.ProblemID = p.ProblemID
		}
	}
}

func (p TeamAdminPatch) Apply(t *Team) {
	p.TeamPatch.Apply(t)
	if p.Status != nil {
		t.Status = *p.Status
	}
}
