package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueJSON(t *testing.T) {
	var answers Answers
	raw := `[{"question_id":"q1","value":4},{"question_id":"q2","value":"sim"},{"question_id":"q3","value":null}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &answers))
	require.Len(t, answers, 3)

	n, ok := answers[0].Value.Float()
	require.True(t, ok)
	assert.Equal(t, 4.0, n)
	assert.Equal(t, "sim", answers[1].Value.Text)
	assert.False(t, answers[2].Value.Answered())

	out, err := json.Marshal(answers)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestAnswerValueRejectsObjects(t *testing.T) {
	var v AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
}

func TestAnswersScan(t *testing.T) {
	var answers Answers
	require.NoError(t, answers.Scan([]byte(`[{"question_id":"q1","value":1}]`)))
	require.Len(t, answers, 1)

	var empty Answers
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	assert.Error(t, empty.Scan(42))
}

func TestResponseViewHidesSubmitter(t *testing.T) {
	resp := &StudentResponse{ID: "r1", TeacherID: "t1", SubmitterID: "s1"}
	out, err := json.Marshal(resp.View())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s1")
	assert.NotContains(t, string(out), "submitter")
}

func TestQuestionnaireLookup(t *testing.T) {
	q := &Questionnaire{Questions: Questions{{ID: "a", Type: QuestionStars}}}
	found, ok := q.Question("a")
	assert.True(t, ok)
	assert.Equal(t, QuestionStars, found.Type)
	_, ok = q.Question("b")
	assert.False(t, ok)
	assert.Equal(t, "q_teacher_inst_9", QuestionnaireID(TargetTeacher, "inst_9"))
}

func TestStringListValue(t *testing.T) {
	var list StringList
	v, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
