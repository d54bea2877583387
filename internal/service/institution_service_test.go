package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

func TestInstitutionServiceCreateUpdate(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	inst, err := f.institutions.CreateInstitution(ctx, models.InstitutionRequest{
		Name: " Universidade Norte ", Code: "UN", ManagerEmails: models.StringList{"Boss@UN.edu"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Universidade Norte", inst.Name)
	assert.Equal(t, models.StringList{"boss@un.edu"}, inst.ManagerEmails)
	assert.False(t, inst.IsEvaluationOpen)

	updated, err := f.institutions.UpdateInstitution(ctx, inst.ID, models.InstitutionRequest{Name: "UNorte", Code: "UNO"})
	require.NoError(t, err)
	assert.Equal(t, "UNO", updated.Code)
	assert.Empty(t, updated.ManagerEmails)

	_, err = f.institutions.CreateInstitution(ctx, models.InstitutionRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.institutions.UpdateInstitution(ctx, "inst_missing", models.InstitutionRequest{Name: "X"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	all, err := f.institutions.ListInstitutions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInstitutionServiceEvaluationPeriod(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	assert.True(t, s.inst.IsEvaluationOpen)
	assert.Equal(t, "2024/1", s.inst.EvaluationPeriodName)

	closed := false
	inst, err := f.institutions.SetEvaluationPeriod(ctx, s.inst.ID, models.EvaluationPeriodRequest{Open: &closed})
	require.NoError(t, err)
	assert.False(t, inst.IsEvaluationOpen)
	assert.Equal(t, "2024/1", inst.EvaluationPeriodName)

	_, err = f.institutions.SetEvaluationPeriod(ctx, s.inst.ID, models.EvaluationPeriodRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestInstitutionServiceDeleteLeavesOrphans(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	require.NoError(t, f.institutions.DeleteInstitution(ctx, s.inst.ID))

	_, err := f.institutions.GetInstitution(ctx, s.inst.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	users, err := f.users.ListUsers(ctx, models.UserFilter{InstitutionID: s.inst.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	subjects, err := f.subjects.ListSubjects(ctx, models.SubjectFilter{InstitutionID: s.inst.ID})
	require.NoError(t, err)
	assert.Len(t, subjects, 1)

	q, err := f.questionnaire.GetQuestionnaire(ctx, s.inst.ID, models.TargetStudent)
	require.NoError(t, err)
	assert.Equal(t, s.questionnaire.ID, q.ID)

	assert.ErrorIs(t, f.institutions.DeleteInstitution(ctx, s.inst.ID), appErrors.ErrNotFound)
}
