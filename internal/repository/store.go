package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/pkg/cache"
	"github.com/noah-isme/teacher-eval-api/pkg/config"
	"github.com/noah-isme/teacher-eval-api/pkg/database"
	"github.com/noah-isme/teacher-eval-api/pkg/storage"
)

// Mode identifies the active backing.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Store exposes one typed collection per entity. The backing is fixed at
// construction and never switches afterwards.
type Store struct {
	Sessions         Collection[models.Session]
	Users            Collection[models.User]
	Institutions     Collection[models.Institution]
	Subjects         Collection[models.Subject]
	Questionnaires   Collection[models.Questionnaire]
	SelfEvaluations  Collection[models.SelfEvaluation]
	QualitativeEvals Collection[models.QualitativeEval]
	Responses        Collection[models.StudentResponse]
	Scores           Collection[models.CombinedScore]

	mode   Mode
	kv     KV
	closer io.Closer
}

// NewLocalStore builds a store whose collections share one lock over kv.
func NewLocalStore(kv KV, observer Observer) *Store {
	mu := &sync.Mutex{}
	store := &Store{
		Sessions:         newLocalCollection[models.Session](kv, SessionsTable, mu, observer),
		Users:            newLocalCollection[models.User](kv, UsersTable, mu, observer),
		Institutions:     newLocalCollection[models.Institution](kv, InstitutionsTable, mu, observer),
		Subjects:         newLocalCollection[models.Subject](kv, SubjectsTable, mu, observer),
		Questionnaires:   newLocalCollection[models.Questionnaire](kv, QuestionnairesTable, mu, observer),
		SelfEvaluations:  newLocalCollection[models.SelfEvaluation](kv, SelfEvaluationsTable, mu, observer),
		QualitativeEvals: newLocalCollection[models.QualitativeEval](kv, QualitativeEvalsTable, mu, observer),
		Responses:        newLocalCollection[models.StudentResponse](kv, StudentResponsesTable, mu, observer),
		Scores:           newLocalCollection[models.CombinedScore](kv, ScoresTable, mu, observer),
		mode:             ModeLocal,
		kv:               kv,
	}
	if closer, ok := kv.(io.Closer); ok {
		store.closer = closer
	}
	return store
}

// NewRemoteStore builds a store backed by relational tables.
func NewRemoteStore(db *sqlx.DB, observer Observer) *Store {
	return &Store{
		Sessions:         newRemoteCollection[models.Session](db, SessionsTable, observer),
		Users:            newRemoteCollection[models.User](db, UsersTable, observer),
		Institutions:     newRemoteCollection[models.Institution](db, InstitutionsTable, observer),
		Subjects:         newRemoteCollection[models.Subject](db, SubjectsTable, observer),
		Questionnaires:   newRemoteCollection[models.Questionnaire](db, QuestionnairesTable, observer),
		SelfEvaluations:  newRemoteCollection[models.SelfEvaluation](db, SelfEvaluationsTable, observer),
		QualitativeEvals: newRemoteCollection[models.QualitativeEval](db, QualitativeEvalsTable, observer),
		Responses:        newRemoteCollection[models.StudentResponse](db, StudentResponsesTable, observer),
		Scores:           newRemoteCollection[models.CombinedScore](db, ScoresTable, observer),
		mode:             ModeRemote,
		closer:           db,
	}
}

// Open selects the remote backing when its parameters are configured and the
// connection succeeds, and the local backing otherwise.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, observer Observer) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Database.Enabled() {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err == nil {
			logger.Info("storage backing selected", zap.String("mode", string(ModeRemote)))
			return NewRemoteStore(db, observer), nil
		}
		logger.Warn("remote store unreachable, falling back to local", zap.Error(err))
	}

	kv, err := openLocalKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage backing selected",
		zap.String("mode", string(ModeLocal)),
		zap.String("driver", cfg.LocalStore.Driver),
	)
	return NewLocalStore(kv, observer), nil
}

func openLocalKV(ctx context.Context, cfg *config.Config) (KV, error) {
	if cfg.LocalStore.Driver == config.LocalDriverRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open local redis store: %w", err)
		}
		return NewRedisKV(client, cfg.Redis.Prefix), nil
	}

	files, err := storage.NewLocalStorage(cfg.LocalStore.Dir)
	if err != nil {
		return nil, fmt.Errorf("open local file store: %w", err)
	}
	return NewFileKV(files), nil
}

// Mode reports which backing is in use.
func (s *Store) Mode() Mode {
	return s.mode
}

// Ping checks the local KV when there is one, then probes the users table.
// ErrTableMissing means the remote schema was never created.
func (s *Store) Ping(ctx context.Context) error {
	if s.kv != nil {
		if err := s.kv.Ping(ctx); err != nil {
			return fmt.Errorf("local store unreachable: %w", err)
		}
	}
	_, err := s.Users.FindOne(ctx)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Close releases the backing connection, if any.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
