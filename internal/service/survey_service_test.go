package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

func TestSurveyServiceSubmitDerivesTeacher(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	view, err := f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{
		QuestionnaireID: s.questionnaire.ID,
		SubjectID:       s.subject.ID,
		Answers:         fullAnswers(5, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, s.teacher.ID, view.TeacherID)
	assert.Equal(t, s.subject.ID, view.SubjectID)
	assert.Equal(t, s.inst.ID, view.InstitutionID)
	assert.False(t, view.SubmittedAt.IsZero())

	stored, err := f.store.Responses.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, s.student.ID, stored.SubmitterID)
}

func TestSurveyServiceRepeatSubmissionsCreateDistinctRecords(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()
	req := models.SubmitResponseRequest{QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID, Answers: fullAnswers(4, 1)}

	first, err := f.survey.SubmitResponse(ctx, s.student.ID, req)
	require.NoError(t, err)
	second, err := f.survey.SubmitResponse(ctx, s.student.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	views, err := f.survey.ListResponses(ctx, models.ResponseFilter{SubjectID: s.subject.ID})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestSurveyServiceRepeatDisabled(t *testing.T) {
	f := newFixture(t, false)
	s := f.seed(t)
	ctx := context.Background()
	req := models.SubmitResponseRequest{QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID, Answers: fullAnswers(4, 1)}

	_, err := f.survey.SubmitResponse(ctx, s.student.ID, req)
	require.NoError(t, err)
	_, err = f.survey.SubmitResponse(ctx, s.student.ID, req)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	other, err := f.users.AddStudent(ctx, models.CreateUserRequest{Email: "s2@isp.edu", Name: "Student Two", InstitutionID: s.inst.ID})
	require.NoError(t, err)
	_, err = f.survey.SubmitResponse(ctx, other.ID, req)
	assert.NoError(t, err)
}

func TestSurveyServiceRejectsClosedEvaluation(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	closed := false
	_, err := f.institutions.SetEvaluationPeriod(ctx, s.inst.ID, models.EvaluationPeriodRequest{Open: &closed})
	require.NoError(t, err)

	_, err = f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{
		QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID, Answers: fullAnswers(5, 1),
	})
	assert.ErrorIs(t, err, appErrors.ErrEvaluationClosed)

	count, err := f.store.Responses.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSurveyServiceRejectsInactiveQuestionnaire(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	_, err := f.questionnaire.SaveQuestionnaire(ctx, models.QuestionnaireRequest{
		InstitutionID: s.inst.ID,
		Title:         s.questionnaire.Title,
		TargetRole:    models.TargetStudent,
		Active:        false,
		Questions:     s.questionnaire.Questions,
	})
	require.NoError(t, err)

	_, err = f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{
		QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID, Answers: fullAnswers(5, 1),
	})
	assert.ErrorIs(t, err, appErrors.ErrEvaluationClosed)

	count, err := f.store.Responses.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSurveyServiceMissingReferences(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	_, err := f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{QuestionnaireID: "q_student_nope", SubjectID: s.subject.ID, Answers: fullAnswers(5, 1)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{QuestionnaireID: s.questionnaire.ID, SubjectID: "sub_nope", Answers: fullAnswers(5, 1)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	unassigned, err := f.subjects.AssignSubject(ctx, models.SubjectRequest{Name: "Physics", InstitutionID: s.inst.ID})
	require.NoError(t, err)
	_, err = f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{QuestionnaireID: s.questionnaire.ID, SubjectID: unassigned.ID, Answers: fullAnswers(5, 1)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.survey.SubmitResponse(ctx, s.student.ID, models.SubmitResponseRequest{QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSurveyServiceStorageFailure(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	svc := NewSurveyService(f.store.Questionnaires, f.store.Subjects, f.store.Institutions,
		failingCollection[models.StudentResponse]{err: repository.ErrTableMissing}, nil, nil, SurveyConfig{AllowRepeat: true})

	_, err := svc.SubmitResponse(context.Background(), s.student.ID, models.SubmitResponseRequest{
		QuestionnaireID: s.questionnaire.ID, SubjectID: s.subject.ID, Answers: fullAnswers(5, 1),
	})
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
}

func TestCheckCompleteness(t *testing.T) {
	q := &models.Questionnaire{Questions: models.Questions{
		{ID: "q1", Type: models.QuestionStars},
		{ID: "q2", Type: models.QuestionText},
	}}

	assert.NoError(t, CheckCompleteness(q, models.Answers{
		{QuestionID: "q1", Value: models.NumberAnswer(3)},
		{QuestionID: "q2", Value: models.TextAnswer("ok")},
	}))

	cases := map[string]models.Answers{
		"missing":   {{QuestionID: "q1", Value: models.NumberAnswer(3)}},
		"empty":     {{QuestionID: "q1", Value: models.NumberAnswer(3)}, {QuestionID: "q2"}},
		"duplicate": {{QuestionID: "q1", Value: models.NumberAnswer(3)}, {QuestionID: "q1", Value: models.NumberAnswer(2)}},
		"unknown":   {{QuestionID: "q1", Value: models.NumberAnswer(3)}, {QuestionID: "zz", Value: models.NumberAnswer(2)}},
	}
	for name, answers := range cases {
		assert.ErrorIs(t, CheckCompleteness(q, answers), appErrors.ErrIncompleteSubmission, name)
	}
}
