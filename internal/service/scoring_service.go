package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
)

type scoringObserver interface {
	ObserveScoring(teachers int, err error)
}

// ScoringSources groups the collections a recalculation reads and writes.
type ScoringSources struct {
	Users            repository.Collection[models.User]
	Questionnaires   repository.Collection[models.Questionnaire]
	Responses        repository.Collection[models.StudentResponse]
	SelfEvaluations  repository.Collection[models.SelfEvaluation]
	QualitativeEvals repository.Collection[models.QualitativeEval]
	Scores           repository.Collection[models.CombinedScore]
}

// ScoringService recomputes the combined score of every teacher of an institution.
type ScoringService struct {
	src      ScoringSources
	observer scoringObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewScoringService constructs a ScoringService. observer may be nil.
func NewScoringService(src ScoringSources, observer scoringObserver, logger *zap.Logger) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		src:      src,
		observer: observer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CalculateScores overwrites the score of every teacher of the institution in
// one batch and returns the new rows. Identical inputs give identical rows
// apart from LastCalculated.
func (s *ScoringService) CalculateScores(ctx context.Context, institutionID string) (scores []models.CombinedScore, err error) {
	defer func() {
		if s.observer != nil {
			s.observer.ObserveScoring(len(scores), err)
		}
	}()

	inst := repository.Eq("institution_id", institutionID)

	teachers, err := s.src.Users.List(ctx, inst, repository.Eq("role", models.RoleTeacher))
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to list teachers")
	}
	questionnaires, err := s.src.Questionnaires.List(ctx, inst)
	if err != nil {
		return nil, storeError(err, "questionnaire not found", "failed to list questionnaires")
	}
	responses, err := s.src.Responses.List(ctx, inst)
	if err != nil {
		return nil, storeError(err, "response not found", "failed to list responses")
	}
	selfEvals, err := s.src.SelfEvaluations.List(ctx, inst)
	if err != nil {
		return nil, storeError(err, "self evaluation not found", "failed to list self evaluations")
	}
	reviews, err := s.src.QualitativeEvals.List(ctx, inst)
	if err != nil {
		return nil, storeError(err, "qualitative evaluation not found", "failed to list qualitative evaluations")
	}

	// Only student questionnaires feed the student component.
	byID := make(map[string]*models.Questionnaire, len(questionnaires))
	for i := range questionnaires {
		if questionnaires[i].TargetRole == models.TargetStudent {
			byID[questionnaires[i].ID] = &questionnaires[i]
		}
	}
	byTeacher := make(map[string][]models.StudentResponse)
	for _, resp := range responses {
		if _, ok := byID[resp.QuestionnaireID]; !ok {
			continue
		}
		byTeacher[resp.TeacherID] = append(byTeacher[resp.TeacherID], resp)
	}
	selfByTeacher := make(map[string]models.SelfEvalActivities, len(selfEvals))
	for _, eval := range selfEvals {
		selfByTeacher[eval.TeacherID] = eval.Activities
	}
	reviewByTeacher := make(map[string]*models.QualitativeEval, len(reviews))
	for i := range reviews {
		reviewByTeacher[reviews[i].TeacherID] = &reviews[i]
	}

	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })

	at := s.now()
	scores = make([]models.CombinedScore, 0, len(teachers))
	for _, teacher := range teachers {
		own := byTeacher[teacher.ID]
		scores = append(scores, models.NewCombinedScore(
			teacher.ID,
			institutionID,
			models.StudentScore(own, byID),
			models.SelfEvalScore(selfByTeacher[teacher.ID]),
			models.InstitutionalScore(reviewByTeacher[teacher.ID]),
			len(own),
			at,
		))
	}

	if err := s.src.Scores.UpsertMany(ctx, scores); err != nil {
		return nil, storeError(err, "score not found", "failed to store scores")
	}
	s.logger.Info("scores recalculated",
		zap.String("institution_id", institutionID),
		zap.Int("teachers", len(scores)),
		zap.Int("responses", len(responses)),
	)
	return scores, nil
}

// ListScores returns the stored scores of the institution, best first.
func (s *ScoringService) ListScores(ctx context.Context, institutionID string) ([]models.CombinedScore, error) {
	scores, err := s.src.Scores.List(ctx, repository.Eq("institution_id", institutionID))
	if err != nil {
		return nil, storeError(err, "score not found", "failed to list scores")
	}
	sortScores(scores)
	return scores, nil
}

func sortScores(scores []models.CombinedScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].FinalScore != scores[j].FinalScore {
			return scores[i].FinalScore > scores[j].FinalScore
		}
		return scores[i].TeacherID < scores[j].TeacherID
	})
}
