package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

func TestEvaluationServiceSelfEvalUpsert(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	first, err := f.evaluations.SaveSelfEval(ctx, s.teacher.ID, models.SelfEvalRequest{
		AcademicYear: "2023", ContractRegime: "full-time",
		Activities: models.SelfEvalActivities{BooksPublished: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SelfEvalID(s.teacher.ID), first.ID)
	assert.Equal(t, s.inst.ID, first.InstitutionID)
	assert.Equal(t, "assistant", first.Category)

	_, err = f.evaluations.SaveSelfEval(ctx, s.teacher.ID, models.SelfEvalRequest{
		AcademicYear: "2024", Category: "associate",
		Activities: models.SelfEvalActivities{BooksPublished: 2},
	})
	require.NoError(t, err)

	all, err := f.store.SelfEvaluations.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := f.evaluations.GetSelfEval(ctx, s.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024", got.AcademicYear)
	assert.Equal(t, 2.0, got.Activities.BooksPublished)
}

func TestEvaluationServiceSelfEvalRejectsNonTeachers(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	_, err := f.evaluations.SaveSelfEval(ctx, s.student.ID, models.SelfEvalRequest{AcademicYear: "2024"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.evaluations.SaveSelfEval(ctx, "usr_missing", models.SelfEvalRequest{AcademicYear: "2024"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.evaluations.SaveSelfEval(ctx, s.teacher.ID, models.SelfEvalRequest{
		AcademicYear: "2024", Activities: models.SelfEvalActivities{ResearchProjects: -1},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.evaluations.GetSelfEval(ctx, s.teacher.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEvaluationServiceQualitative(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	_, err := f.evaluations.SaveQualitativeEval(ctx, "mgr", models.QualitativeEvalRequest{TeacherID: s.teacher.ID, Punctuality: 6})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.evaluations.SaveQualitativeEval(ctx, "mgr", models.QualitativeEvalRequest{TeacherID: s.teacher.ID, Punctuality: 3, Comments: "first"})
	require.NoError(t, err)
	saved, err := f.evaluations.SaveQualitativeEval(ctx, "mgr-2", models.QualitativeEvalRequest{TeacherID: s.teacher.ID, Punctuality: 4, Comments: "second"})
	require.NoError(t, err)
	assert.Equal(t, models.QualitativeEvalID(s.teacher.ID), saved.ID)

	got, err := f.evaluations.GetQualitativeEval(ctx, s.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Comments)
	assert.Equal(t, "mgr-2", got.EvaluatorID)

	count, err := f.store.QualitativeEvals.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
