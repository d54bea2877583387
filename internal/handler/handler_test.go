package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/middleware"
	"github.com/noah-isme/teacher-eval-api/internal/models"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type surveyServiceMock struct {
	submitted int
	err       error
}

func (m *surveyServiceMock) SubmitResponse(ctx context.Context, submitterID string, req models.SubmitResponseRequest) (*models.ResponseView, error) {
	m.submitted++
	if m.err != nil {
		return nil, m.err
	}
	return &models.ResponseView{ID: "resp_1", QuestionnaireID: req.QuestionnaireID, SubjectID: req.SubjectID}, nil
}

func (m *surveyServiceMock) ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.ResponseView, error) {
	return nil, nil
}

type questionnaireLookupMock struct {
	questionnaire *models.Questionnaire
	err           error
}

func (m questionnaireLookupMock) GetByID(ctx context.Context, id string) (*models.Questionnaire, error) {
	return m.questionnaire, m.err
}

type scoringServiceMock struct {
	institutionID string
}

func (m *scoringServiceMock) CalculateScores(ctx context.Context, institutionID string) ([]models.CombinedScore, error) {
	m.institutionID = institutionID
	return []models.CombinedScore{{TeacherID: "usr_1", InstitutionID: institutionID}}, nil
}

func (m *scoringServiceMock) ListScores(ctx context.Context, institutionID string) ([]models.CombinedScore, error) {
	m.institutionID = institutionID
	return []models.CombinedScore{}, nil
}

func studentQuestionnaire() *models.Questionnaire {
	return &models.Questionnaire{
		ID:            "q_student_inst_1",
		InstitutionID: "inst_1",
		TargetRole:    models.TargetStudent,
		Questions:     models.Questions{{ID: "q1", Type: models.QuestionStars}},
	}
}

func submission(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(models.SubmitResponseRequest{
		QuestionnaireID: "q_student_inst_1",
		SubjectID:       "sub_1",
		Answers:         models.Answers{{QuestionID: "q1", Value: models.NumberAnswer(4)}},
	})
	require.NoError(t, err)
	return payload
}

func TestResponseHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	survey := &surveyServiceMock{}
	h := NewResponseHandler(survey, questionnaireLookupMock{questionnaire: studentQuestionnaire()})

	c, w := newGinContext(http.MethodPost, "/responses", submission(t))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "usr_s", Role: models.RoleStudent, InstitutionID: "inst_1"})
	h.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, survey.submitted)
}

func TestResponseHandlerRejectsBeforeSubmitting(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		claims *models.JWTClaims
		lookup questionnaireLookupMock
		status int
	}{
		{"other tenant", &models.JWTClaims{UserID: "u", Role: models.RoleStudent, InstitutionID: "inst_2"}, questionnaireLookupMock{questionnaire: studentQuestionnaire()}, http.StatusForbidden},
		{"wrong audience", &models.JWTClaims{UserID: "u", Role: models.RoleTeacher, InstitutionID: "inst_1"}, questionnaireLookupMock{questionnaire: studentQuestionnaire()}, http.StatusForbidden},
		{"missing questionnaire", &models.JWTClaims{UserID: "u", Role: models.RoleStudent, InstitutionID: "inst_1"}, questionnaireLookupMock{err: appErrors.ErrNotFound}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			survey := &surveyServiceMock{}
			h := NewResponseHandler(survey, tc.lookup)
			c, w := newGinContext(http.MethodPost, "/responses", submission(t))
			c.Set(middleware.ContextUserKey, tc.claims)
			h.Submit(c)
			assert.Equal(t, tc.status, w.Code)
			assert.Zero(t, survey.submitted)
		})
	}
}

func TestResponseHandlerInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewResponseHandler(&surveyServiceMock{}, questionnaireLookupMock{questionnaire: studentQuestionnaire()})

	c, w := newGinContext(http.MethodPost, "/responses", []byte(`{"answers": {}}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u", Role: models.RoleStudent, InstitutionID: "inst_1"})
	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreHandlerInstitutionScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	scoring := &scoringServiceMock{}
	h := NewScoreHandler(scoring)

	c, w := newGinContext(http.MethodPost, "/scores/calculate", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "root", Role: models.RoleSuperAdmin})
	h.Calculate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodPost, "/scores/calculate", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "mgr", Role: models.RoleInstitutionManager, InstitutionID: "inst_9"})
	h.Calculate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inst_9", scoring.institutionID)
	assert.Contains(t, w.Body.String(), `"teachers":1`)

	c, w = newGinContext(http.MethodGet, "/scores?institution_id=inst_1", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "mgr", Role: models.RoleInstitutionManager, InstitutionID: "inst_9"})
	h.List(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlersRequireClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newGinContext(http.MethodGet, "/scores", nil)
	NewScoreHandler(&scoringServiceMock{}).List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
