package models

import (
	"math"
	"time"
)

// NormalizeAnswer maps a numeric answer onto [0,1] for its question type.
// Non-numeric types report false.
func NormalizeAnswer(t QuestionType, v float64) (float64, bool) {
	switch t {
	case QuestionBinary:
		return clamp(v, 0, 1), true
	case QuestionStars:
		return (clamp(v, 1, 5) - 1) / 4, true
	case QuestionScale10:
		return clamp(v, 0, 10) / 10, true
	}
	return 0, false
}

// StudentScore is the weighted mean of every normalised numeric answer,
// scaled to StudentScoreMax. Questions with a non-positive weight count once.
// Answers whose questionnaire or question is unknown are skipped.
func StudentScore(responses []StudentResponse, questionnaires map[string]*Questionnaire) float64 {
	var weighted, weights float64
	for _, resp := range responses {
		q := questionnaires[resp.QuestionnaireID]
		if q == nil {
			continue
		}
		for _, answer := range resp.Answers {
			question, ok := q.Question(answer.QuestionID)
			if !ok {
				continue
			}
			v, ok := answer.Value.Float()
			if !ok {
				continue
			}
			n, ok := NormalizeAnswer(question.Type, v)
			if !ok {
				continue
			}
			w := question.Weight
			if w <= 0 {
				w = 1
			}
			weighted += w * n
			weights += w
		}
	}
	if weights == 0 {
		return 0
	}
	return Round2(StudentScoreMax * weighted / weights)
}

// SelfEvalScore sums each counter against SelfEvalPointTable, capping every
// field and then the total at SelfEvalMaxScore.
func SelfEvalScore(a SelfEvalActivities) float64 {
	var total float64
	for _, rule := range SelfEvalPointTable {
		count := math.Max(rule.Count(a), 0)
		total += math.Min(count*rule.Points, rule.Cap)
	}
	return Round2(math.Min(total, SelfEvalMaxScore))
}

// InstitutionalScore scales the mean qualitative rating to InstitutionalScoreMax.
// A teacher without a review scores 0.
func InstitutionalScore(q *QualitativeEval) float64 {
	if q == nil {
		return 0
	}
	ratings := q.Ratings()
	var sum float64
	for _, r := range ratings {
		sum += clamp(float64(r), 0, QualitativeMaxRating)
	}
	mean := sum / float64(len(ratings))
	return Round2(mean / QualitativeMaxRating * InstitutionalScoreMax)
}

// NewCombinedScore assembles the component scores of one teacher.
func NewCombinedScore(teacherID, institutionID string, student, selfEval, institutional float64, responses int, at time.Time) CombinedScore {
	final := Round2(student + selfEval + institutional)
	return CombinedScore{
		ID:                 ScoreID(teacherID),
		TeacherID:          teacherID,
		InstitutionID:      institutionID,
		StudentScore:       student,
		SelfEvalScore:      selfEval,
		InstitutionalScore: institutional,
		FinalScore:         final,
		FinalGrade:         Round2(final / FinalScoreMax * GradeScale),
		ResponseCount:      responses,
		LastCalculated:     at,
	}
}

// ScoreID is the deterministic id of a teacher's combined score.
func ScoreID(teacherID string) string {
	return "score_" + teacherID
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
