package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationScores_Overall(t *testing.T) {
	scores := NewEvaluationScores(9, 8, 9, 8, 9)
	assert.True(t, scores.Complete())
	assert.Equal(t, 8.6, scores.Overall())

	assert.Equal(t, 6.67, NewEvaluationScores(10, 10, 10, 3.35, 0).Overall())

	var r Review
	scores.ApplyTo(&r)
	require.NotNil(t, r.TechnicalScore)
	assert.Equal(t, 8.0, *r.TechnicalScore)
	assert.Equal(t, 9.0, *r.CreativityScore)
	assert.Equal(t, 9.0, *r.UsabilityScore)
	assert.Equal(t, 9.0, *r.CompletenessScore)
	assert.Equal(t, 8.6, *r.OverallScore)
}

func TestEvaluationScores_Complete(t *testing.T) {
	var partial EvaluationScores
	require.NoError(t, json.Unmarshal([]byte(`{"innovation":9,"impact":0}`), &partial))
	assert.False(t, partial.Complete())
	assert.Equal(t, []float64{9, 0}, partial.All())

	assert.False(t, EvaluationScores{}.Complete())

	var full EvaluationScores
	require.NoError(t, json.Unmarshal([]byte(`{"innovation":9,"technicalExecution":8,"userExperience":9,"presentation":8,"impact":0}`), &full))
	assert.True(t, full.Complete())
	assert.Equal(t, 6.8, full.Overall())
}

func TestSubmission_MarkStatusStampsOnce(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &Submission{Status: SubmissionDraft}

	s.MarkStatus(SubmissionSubmitted, first)
	require.NotNil(t, s.SubmittedAt)
	assert.Equal(t, first, *s.SubmittedAt)

	s.MarkStatus(SubmissionDraft, first.Add(time.Hour))
	s.MarkStatus(SubmissionSubmitted, first.Add(2*time.Hour))
	assert.Equal(t, first, *s.SubmittedAt)
}

func TestSubmissionStatus(t *testing.T) {
	assert.True(t, SubmissionUnderReview.Valid())
	assert.False(t, SubmissionStatus("finished").Valid())
	assert.True(t, SubmissionSubmitted.TeamSettable())
	assert.False(t, SubmissionAccepted.TeamSettable())
	assert.True(t, SubmissionRejected.Evaluated())
	assert.False(t, SubmissionDraft.Evaluated())
}

func TestTeamPatch_ClearsProblem(t *testing.T) {
	pid := "p-1"
	team := &Team{Name: "A", ProblemID: &pid, Status: TeamPending}
	empty := ""
	name := "B"
	approved := TeamApproved

	TeamPatch{Name: &name, ProblemID: &empty}.Apply(team)
	assert.Equal(t, "B", team.Name)
	assert.Nil(t, team.ProblemID)
	assert.Equal(t, TeamPending, team.Status)

	TeamAdminPatch{Status: &approved}.Apply(team)
	assert.Equal(t, TeamApproved, team.Status)
}

func TestJSONColumns(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = Resources{{Name: "Docs", URL: "https://example.com"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Docs","url":"https://example.com"}]`, string(v.([]byte)))

	var faqs FAQs
	require.NoError(t, faqs.Scan(`[{"question":"Q","answer":"A"}]`))
	assert.Equal(t, FAQs{{Question: "Q", Answer: "A"}}, faqs)

	var timeline Timeline
	require.NoError(t, timeline.Scan([]byte(`[{"phase":"Kickoff","deadline":"2025-01-01"}]`)))
	assert.Equal(t, "Kickoff", timeline[0].Phase)

	var list StringList
	require.NoError(t, list.Scan(nil))
	assert.Nil(t, list)
	assert.Error(t, list.Scan(42))
}
