package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

func TestSubjectServiceAssignRejectsInvalidTeachers(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	other, err := f.institutions.CreateInstitution(ctx, models.InstitutionRequest{Name: "Other School", Code: "OTH"})
	require.NoError(t, err)
	outsider, err := f.users.AddTeacher(ctx, models.CreateUserRequest{Email: "t2@oth.edu", Name: "Teacher Two", InstitutionID: other.ID})
	require.NoError(t, err)
	missing := "usr_missing"

	cases := []struct {
		name      string
		teacherID *string
		want      *appErrors.Error
	}{
		{"not a teacher", &s.student.ID, appErrors.ErrValidation},
		{"other institution", &outsider.ID, appErrors.ErrValidation},
		{"unknown user", &missing, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.subjects.AssignSubject(ctx, models.SubjectRequest{Name: "Physics", InstitutionID: s.inst.ID, TeacherID: tc.teacherID})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	subjects, err := f.subjects.ListSubjects(ctx, models.SubjectFilter{InstitutionID: s.inst.ID})
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

func TestSubjectServiceAssignListDelete(t *testing.T) {
	f := newFixture(t, true)
	s := f.seed(t)
	ctx := context.Background()

	blank := "  "
	unassigned, err := f.subjects.AssignSubject(ctx, models.SubjectRequest{Name: " History ", InstitutionID: s.inst.ID, TeacherID: &blank})
	require.NoError(t, err)
	assert.Equal(t, "History", unassigned.Name)
	assert.Nil(t, unassigned.TeacherID)

	_, err = f.subjects.AssignSubject(ctx, models.SubjectRequest{InstitutionID: s.inst.ID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	taught, err := f.subjects.ListSubjects(ctx, models.SubjectFilter{TeacherID: s.teacher.ID})
	require.NoError(t, err)
	require.Len(t, taught, 1)
	assert.Equal(t, s.subject.ID, taught[0].ID)

	all, err := f.subjects.ListSubjects(ctx, models.SubjectFilter{InstitutionID: s.inst.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, f.subjects.DeleteSubject(ctx, unassigned.ID))
	_, err = f.subjects.GetSubject(ctx, unassigned.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
