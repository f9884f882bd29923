package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionFixture struct {
	env      *testEnv
	leader   *model.User
	outsider *model.User
	judge    *model.User
	mentor   *model.User
	admin    *model.User
	team     *model.Team
	problem  *model.Problem
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	env := newTestEnv(t)
	f := &submissionFixture{
		env:      env,
		leader:   env.user(t, model.RoleParticipant),
		outsider: env.user(t, model.RoleParticipant),
		judge:    env.user(t, model.RoleJudge),
		mentor:   env.user(t, model.RoleMentor),
		admin:    env.user(t, model.RoleAdmin),
		problem:  env.problem(t, "Smart Campus"),
	}
	f.team = env.team(t, "Builders", f.leader)
	return f
}

func (f *submissionFixture) create(t *testing.T, status model.SubmissionStatus) *model.Submission {
	t.Helper()
	sub, err := f.env.submissions.Create(context.Background(), f.leader, model.CreateSubmissionRequest{
		TeamID:        f.team.ID,
		ProblemID:     f.problem.ID,
		Title:         "Campus Navigator",
		Description:   "Indoor navigation",
		RepositoryURL: "https://git.example/nav",
		Technologies:  model.StringList{"go", "react"},
		Status:        status,
	})
	require.NoError(t, err)
	return sub
}

func TestSubmissionService_Create(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	draft := f.create(t, "")
	assert.Equal(t, model.SubmissionDraft, draft.Status)
	assert.Nil(t, draft.SubmittedAt)

	submitted := f.create(t, model.SubmissionSubmitted)
	assert.NotNil(t, submitted.SubmittedAt)

	_, err := f.env.submissions.Create(ctx, f.outsider, model.CreateSubmissionRequest{
		TeamID: f.team.ID, ProblemID: f.problem.ID, Title: "x", Description: "y", RepositoryURL: "z",
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.Create(ctx, f.leader, model.CreateSubmissionRequest{
		TeamID: f.team.ID, ProblemID: f.problem.ID, Title: "x", Description: "y", RepositoryURL: "z",
		Status: model.SubmissionAccepted,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.env.submissions.Create(ctx, f.leader, model.CreateSubmissionRequest{TeamID: f.team.ID, Title: "x"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSubmissionService_TeamEditLock(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	draft := f.create(t, model.SubmissionDraft)
	updated, err := f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"description":"Better"}`))
	require.NoError(t, err)
	assert.Equal(t, "Better", updated.Description)

	updated, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"status":"submitted"}`))
	require.NoError(t, err)
	require.NotNil(t, updated.SubmittedAt)
	firstSubmit := *updated.SubmittedAt

	_, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"description":"Sneaky"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Cannot update a submission that has been reviewed", common.PublicMessage(err))

	updated, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"description":"Resubmitted","status":"submitted"}`))
	require.NoError(t, err)
	assert.Equal(t, "Resubmitted", updated.Description)
	assert.Equal(t, firstSubmit, *updated.SubmittedAt)
}

func TestSubmissionService_TeamRestrictions(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	draft := f.create(t, model.SubmissionDraft)

	_, err := f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"status":"accepted"}`))
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"score":99}`))
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.Update(ctx, f.outsider, draft.ID, []byte(`{"title":"Mine"}`))
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"title":`))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.env.submissions.Update(ctx, f.judge, draft.ID, []byte(`{"status":"under_review"}`))
	require.NoError(t, err)
	_, err = f.env.submissions.Update(ctx, f.leader, draft.ID, []byte(`{"status":"submitted"}`))
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestSubmissionService_ReviewerAllowList(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)

	_, err := f.env.submissions.Update(ctx, f.judge, sub.ID, []byte(`{"feedback":"ok","repositoryUrl":"https://evil"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only update feedback, score, and status", common.PublicMessage(err))

	unchanged, err := f.env.store.Submissions().FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.Feedback)

	updated, err := f.env.submissions.Update(ctx, f.mentor, sub.ID, []byte(`{"feedback":"Nice work","score":72.5,"status":"under_review"}`))
	require.NoError(t, err)
	assert.Equal(t, "Nice work", *updated.Feedback)
	assert.Equal(t, 72.5, *updated.Score)
	assert.Equal(t, model.SubmissionUnderReview, updated.Status)

	_, err = f.env.submissions.Update(ctx, f.judge, sub.ID, []byte(`{"score":101}`))
	assert.ErrorIs(t, err, common.ErrValidation)

	updated, err = f.env.submissions.Update(ctx, f.admin, sub.ID, []byte(`{"title":"Renamed","status":"accepted"}`))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, model.SubmissionAccepted, updated.Status)
}

func TestSubmissionService_Evaluate(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)

	scores := model.NewEvaluationScores(9, 8, 9, 8, 9)
	result, err := f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{
		Status: model.SubmissionAccepted, Scores: scores, Notes: strPtr("Strong entry"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionAccepted, result.Submission.Status)
	assert.Equal(t, 8.6, *result.Submission.Score)
	assert.Equal(t, 8.6, *result.Review.OverallScore)
	assert.Equal(t, 8.0, *result.Review.TechnicalScore)
	assert.Equal(t, 9.0, *result.Review.CreativityScore)
	assert.Equal(t, 9.0, *result.Review.UsabilityScore)
	assert.Equal(t, 9.0, *result.Review.CompletenessScore)
	assert.Equal(t, "Strong entry", *result.Review.Comments)

	again, err := f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{
		Status: model.SubmissionRejected, Scores: model.NewEvaluationScores(0, 0, 0, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, result.Review.ID, again.Review.ID)
	assert.Equal(t, 0.0, *again.Submission.Score)
	assert.Equal(t, 1, f.env.store.Counts()["reviews"])

	_, err = f.env.submissions.Evaluate(ctx, f.admin, sub.ID, model.EvaluateRequest{Status: model.SubmissionAccepted, Scores: scores})
	require.NoError(t, err)
	assert.Equal(t, 2, f.env.store.Counts()["reviews"])
}

func TestSubmissionService_EvaluateValidation(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)

	_, err := f.env.submissions.Evaluate(ctx, f.mentor, sub.ID, model.EvaluateRequest{Status: model.SubmissionAccepted})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{Status: model.SubmissionDraft})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{
		Status: model.SubmissionAccepted, Scores: model.NewEvaluationScores(9, 8, 9, 8, 11),
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.env.submissions.Evaluate(ctx, f.judge, "missing", model.EvaluateRequest{
		Status: model.SubmissionAccepted, Scores: model.NewEvaluationScores(9, 8, 9, 8, 9),
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, f.env.store.Counts()["reviews"])
}

func TestSubmissionService_EvaluateRequiresEveryScore(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)

	for name, body := range map[string]string{
		"no scores":      `{"status":"accepted"}`,
		"partial scores": `{"status":"accepted","scores":{"innovation":9}}`,
		"null score":     `{"status":"accepted","scores":{"innovation":9,"technicalExecution":8,"userExperience":9,"presentation":null,"impact":9}}`,
	} {
		t.Run(name, func(t *testing.T) {
			var req model.EvaluateRequest
			require.NoError(t, json.Unmarshal([]byte(body), &req))
			_, err := f.env.submissions.Evaluate(ctx, f.judge, sub.ID, req)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, "All five scores are required", common.PublicMessage(err))
		})
	}

	stored, _, err := f.env.submissions.Get(ctx, f.admin, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, stored.Status)
	assert.Nil(t, stored.Score)
	assert.Zero(t, f.env.store.Counts()["reviews"])
}

func TestSubmissionService_ConcurrentEvaluationsUpsert(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{
				Status: model.SubmissionAccepted, Scores: model.NewEvaluationScores(9, 8, 9, 8, 9),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.env.store.Counts()["reviews"])
}

func TestSubmissionService_ListAndGetScoping(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := f.create(t, model.SubmissionSubmitted)
	_, err := f.env.submissions.Evaluate(ctx, f.judge, sub.ID, model.EvaluateRequest{
		Status: model.SubmissionUnderReview, Scores: model.NewEvaluationScores(7, 7, 7, 7, 7),
	})
	require.NoError(t, err)

	mine, err := f.env.submissions.List(ctx, f.leader, SubmissionFilter{TeamID: f.team.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.env.submissions.List(ctx, f.outsider, SubmissionFilter{TeamID: f.team.ID})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.env.submissions.List(ctx, f.leader, SubmissionFilter{ProblemID: f.problem.ID})
	assert.ErrorIs(t, err, common.ErrForbidden)
	byProblem, err := f.env.submissions.List(ctx, f.mentor, SubmissionFilter{ProblemID: f.problem.ID})
	require.NoError(t, err)
	assert.Len(t, byProblem, 1)

	_, err = f.env.submissions.List(ctx, f.judge, SubmissionFilter{})
	assert.ErrorIs(t, err, common.ErrForbidden)
	all, err := f.env.submissions.List(ctx, f.admin, SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, reviews, err := f.env.submissions.Get(ctx, f.leader, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, reviews)

	_, reviews, err = f.env.submissions.Get(ctx, f.mentor, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, reviews)

	_, reviews, err = f.env.submissions.Get(ctx, f.judge, sub.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, _, err = f.env.submissions.Get(ctx, f.outsider, sub.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
