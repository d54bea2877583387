package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
)

var errBackend = errors.New("backend unreachable")

type mockKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string][]byte{}}
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockKV) Ping(ctx context.Context) error { return nil }

// failingCollection returns err from every call.
type failingCollection[T any] struct {
	err error
}

func (f failingCollection[T]) List(context.Context, ...repository.Condition) ([]T, error) {
	return nil, f.err
}

func (f failingCollection[T]) Get(context.Context, string) (*T, error) { return nil, f.err }

func (f failingCollection[T]) FindOne(context.Context, ...repository.Condition) (*T, error) {
	return nil, f.err
}

func (f failingCollection[T]) Count(context.Context, ...repository.Condition) (int, error) {
	return 0, f.err
}

func (f failingCollection[T]) Insert(context.Context, *T) error { return f.err }
func (f failingCollection[T]) Update(context.Context, *T) error { return f.err }
func (f failingCollection[T]) Upsert(context.Context, *T) error { return f.err }
func (f failingCollection[T]) UpsertMany(context.Context, []T) error { return f.err }
func (f failingCollection[T]) Delete(context.Context, string) error { return f.err }

type mockProbe struct {
	err  error
	mode repository.Mode
}

func (p mockProbe) Ping(context.Context) error { return p.err }
func (p mockProbe) Mode() repository.Mode { return p.mode }

const (
	testBootstrapEmail    = "admin@sistema.edu"
	testBootstrapPassword = "admin123"
	testDefaultPassword   = "123456"
)

type fixture struct {
	store         *repository.Store
	users         *UserService
	sessions      *SessionService
	institutions  *InstitutionService
	subjects      *SubjectService
	questionnaire *QuestionnaireService
	evaluations   *EvaluationService
	survey        *SurveyService
	scoring       *ScoringService
}

func newFixture(t *testing.T, allowRepeat bool) *fixture {
	t.Helper()
	store := repository.NewLocalStore(newMockKV(), nil)
	validate := validator.New()
	logger := zap.NewNop()

	users := NewUserService(store.Users, store.Institutions, validate, logger, UserConfig{
		BootstrapEmail:    testBootstrapEmail,
		BootstrapPassword: testBootstrapPassword,
		DefaultPassword:   testDefaultPassword,
		HashCost:          bcrypt.MinCost,
	})
	return &fixture{
		store:         store,
		users:         users,
		sessions:      NewSessionService(users, store.Sessions, store, validate, logger, SessionConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"}),
		institutions:  NewInstitutionService(store.Institutions, validate, logger),
		subjects:      NewSubjectService(store.Subjects, store.Users, validate, logger),
		questionnaire: NewQuestionnaireService(store.Questionnaires, store.Institutions, validate, logger),
		evaluations:   NewEvaluationService(store.SelfEvaluations, store.QualitativeEvals, store.Users, validate, logger),
		survey:        NewSurveyService(store.Questionnaires, store.Subjects, store.Institutions, store.Responses, validate, logger, SurveyConfig{AllowRepeat: allowRepeat}),
		scoring: NewScoringService(ScoringSources{
			Users:            store.Users,
			Questionnaires:   store.Questionnaires,
			Responses:        store.Responses,
			SelfEvaluations:  store.SelfEvaluations,
			QualitativeEvals: store.QualitativeEvals,
			Scores:           store.Scores,
		}, nil, logger),
	}
}

// seeded holds the entities of the reference scenario: one open institution,
// one teacher, one student, one subject and a two-question student survey.
type seeded struct {
	inst          *models.Institution
	teacher       *models.User
	student       *models.User
	subject       *models.Subject
	questionnaire *models.Questionnaire
}

func (f *fixture) seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()

	inst, err := f.institutions.CreateInstitution(ctx, models.InstitutionRequest{Name: "Instituto Superior", Code: "ISP"})
	require.NoError(t, err)
	open := true
	inst, err = f.institutions.SetEvaluationPeriod(ctx, inst.ID, models.EvaluationPeriodRequest{Open: &open, PeriodName: "2024/1"})
	require.NoError(t, err)

	teacher, err := f.users.AddTeacher(ctx, models.CreateUserRequest{Email: "t1@isp.edu", Name: "Teacher One", InstitutionID: inst.ID, Category: "assistant"})
	require.NoError(t, err)
	student, err := f.users.AddStudent(ctx, models.CreateUserRequest{Email: "s1@isp.edu", Name: "Student One", InstitutionID: inst.ID, Course: "Engineering"})
	require.NoError(t, err)

	subject, err := f.subjects.AssignSubject(ctx, models.SubjectRequest{Name: "Algebra", InstitutionID: inst.ID, TeacherID: &teacher.ID})
	require.NoError(t, err)

	questionnaire, err := f.questionnaire.SaveQuestionnaire(ctx, models.QuestionnaireRequest{
		InstitutionID: inst.ID,
		Title:         "Student survey",
		TargetRole:    models.TargetStudent,
		Active:        true,
		Questions: models.Questions{
			{ID: "q1", Text: "Overall quality", Type: models.QuestionStars, Weight: 1},
			{ID: "q2", Text: "Was the teacher punctual?", Type: models.QuestionBinary, Weight: 1},
		},
	})
	require.NoError(t, err)

	return seeded{inst: inst, teacher: teacher, student: student, subject: subject, questionnaire: questionnaire}
}

func fullAnswers(stars, binary float64) models.Answers {
	return models.Answers{
		{QuestionID: "q1", Value: models.NumberAnswer(stars)},
		{QuestionID: "q2", Value: models.NumberAnswer(binary)},
	}
}
