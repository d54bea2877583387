package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/storage"
)

func newTestLocalStore(t *testing.T) (*Store, *FileKV) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	kv := NewFileKV(files)
	return NewLocalStore(kv, nil), kv
}

func strPtr(s string) *string { return &s }

func TestLocalCollectionInsertGetList(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	users, err := store.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, store.Users.Insert(ctx, &models.User{ID: "u1", Email: "a@x.edu", Role: models.RoleTeacher, InstitutionID: strPtr("inst-1")}))
	require.NoError(t, store.Users.Insert(ctx, &models.User{ID: "u2", Email: "b@x.edu", Role: models.RoleStudent, InstitutionID: strPtr("inst-1")}))
	require.NoError(t, store.Users.Insert(ctx, &models.User{ID: "u3", Email: "c@x.edu", Role: models.RoleSuperAdmin}))

	found, err := store.Users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "b@x.edu", found.Email)

	teachers, err := store.Users.List(ctx, Eq("institution_id", "inst-1"), Eq("role", models.RoleTeacher))
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "u1", teachers[0].ID)

	global, err := store.Users.List(ctx, Eq("institution_id", nil))
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "u3", global[0].ID)

	count, err := store.Users.Count(ctx, Eq("institution_id", strPtr("inst-1")))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.Users.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCollectionUpdateDelete(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	inst := &models.Institution{ID: "inst-1", Name: "Politécnico", ManagerEmails: models.StringList{"m@x.edu"}}
	require.NoError(t, store.Institutions.Insert(ctx, inst))

	inst.IsEvaluationOpen = true
	require.NoError(t, store.Institutions.Update(ctx, inst))

	open, err := store.Institutions.List(ctx, Eq("is_evaluation_open", true))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, models.StringList{"m@x.edu"}, open[0].ManagerEmails)

	assert.ErrorIs(t, store.Institutions.Update(ctx, &models.Institution{ID: "nope"}), ErrNotFound)

	require.NoError(t, store.Institutions.Delete(ctx, "inst-1"))
	assert.ErrorIs(t, store.Institutions.Delete(ctx, "inst-1"), ErrNotFound)

	remaining, err := store.Institutions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestLocalCollectionUpsertByKey(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	first := &models.CombinedScore{ID: "score_t1", TeacherID: "t1", InstitutionID: "inst-1", FinalScore: 40}
	require.NoError(t, store.Scores.Upsert(ctx, first))

	second := &models.CombinedScore{ID: "score_t1", TeacherID: "t1", InstitutionID: "inst-1", FinalScore: 55}
	require.NoError(t, store.Scores.Upsert(ctx, second))

	scores, err := store.Scores.List(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 55.0, scores[0].FinalScore)

	batch := []models.CombinedScore{
		{ID: "score_t1", TeacherID: "t1", FinalScore: 60},
		{ID: "score_t2", TeacherID: "t2", FinalScore: 70},
	}
	require.NoError(t, store.Scores.UpsertMany(ctx, batch))

	scores, err = store.Scores.List(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 60.0, scores[0].FinalScore)
	assert.Equal(t, "t2", scores[1].TeacherID)
}

func TestLocalStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	store := NewLocalStore(NewFileKV(files), nil)
	submitted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	resp := &models.StudentResponse{
		ID:          "r1",
		TeacherID:   "t1",
		SubmitterID: "s1",
		Answers:     models.Answers{{QuestionID: "q1", Value: models.NumberAnswer(4)}, {QuestionID: "q2", Value: models.TextAnswer("good")}},
		SubmittedAt: submitted,
	}
	require.NoError(t, store.Responses.Insert(ctx, resp))

	reopened := NewLocalStore(NewFileKV(files), nil)
	got, err := reopened.Responses.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SubmitterID)
	assert.True(t, got.SubmittedAt.Equal(submitted))
	n, ok := got.Answers[0].Value.Float()
	require.True(t, ok)
	assert.Equal(t, 4.0, n)
	assert.Equal(t, "good", got.Answers[1].Value.Text)
}

func TestLocalStoreModeAndPing(t *testing.T) {
	store, _ := newTestLocalStore(t)
	assert.Equal(t, ModeLocal, store.Mode())
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}

func TestLocalStorePingReportsUnreachableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	store := NewLocalStore(NewFileKV(files), nil)
	require.NoError(t, store.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, store.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewFileKV(files).Ping(ctx), context.Canceled)
}

func TestLocalCollectionConcurrentInserts(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Sessions.Insert(ctx, &models.Session{ID: time.Duration(i).String(), UserID: "u1"})
		}(i)
	}
	wg.Wait()

	count, err := store.Sessions.Count(ctx, Eq("user_id", "u1"))
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (o *recordingObserver) ObserveStoreOperation(table, op string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, table+"."+op)
}

func TestLocalCollectionReportsOperations(t *testing.T) {
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	obs := &recordingObserver{}
	store := NewLocalStore(NewFileKV(files), obs)
	ctx := context.Background()

	require.NoError(t, store.Subjects.Insert(ctx, &models.Subject{ID: "s1"}))
	_, err = store.Subjects.Get(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, []string{"subjects.insert", "subjects.find"}, obs.ops)
}
