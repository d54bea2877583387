package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacher-eval-api/api/swagger"
	"github.com/noah-isme/teacher-eval-api/internal/handler"
	internalmiddleware "github.com/noah-isme/teacher-eval-api/internal/middleware"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	"github.com/noah-isme/teacher-eval-api/internal/service"
	"github.com/noah-isme/teacher-eval-api/pkg/config"
	"github.com/noah-isme/teacher-eval-api/pkg/export"
	"github.com/noah-isme/teacher-eval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teacher-eval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacher-eval-api/pkg/middleware/requestid"
)

// @title Teacher Evaluation API
// @version 1.0.0
// @description Multi-tenant teacher performance evaluation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	store, err := repository.Open(ctx, cfg, logr, metrics)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck
	logr.Info("storage ready", zap.String("mode", string(store.Mode())))

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	registerAPI(r, cfg, store, metrics, logr)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerAPI(r *gin.Engine, cfg *config.Config, store *repository.Store, metrics *service.MetricsService, logr *zap.Logger) {
	validate := validator.New()

	users := service.NewUserService(store.Users, store.Institutions, validate, logr.Named("users"), service.UserConfig{
		BootstrapEmail:    cfg.Bootstrap.Email,
		BootstrapPassword: cfg.Bootstrap.Password,
		DefaultPassword:   cfg.Bootstrap.DefaultPassword,
	})
	sessions := service.NewSessionService(users, store.Sessions, store, validate, logr.Named("sessions"), service.SessionConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	institutions := service.NewInstitutionService(store.Institutions, validate, logr.Named("institutions"))
	subjects := service.NewSubjectService(store.Subjects, store.Users, validate, logr.Named("subjects"))
	questionnaires := service.NewQuestionnaireService(store.Questionnaires, store.Institutions, validate, logr.Named("questionnaires"))
	evaluations := service.NewEvaluationService(store.SelfEvaluations, store.QualitativeEvals, store.Users, validate, logr.Named("evaluations"))
	survey := service.NewSurveyService(store.Questionnaires, store.Subjects, store.Institutions, store.Responses, validate, logr.Named("survey"), service.SurveyConfig{
		AllowRepeat: cfg.Survey.AllowRepeat,
	})
	scoring := service.NewScoringService(service.ScoringSources{
		Users:            store.Users,
		Questionnaires:   store.Questionnaires,
		Responses:        store.Responses,
		SelfEvaluations:  store.SelfEvaluations,
		QualitativeEvals: store.QualitativeEvals,
		Scores:           store.Scores,
	}, metrics, logr.Named("scoring"))
	exports := service.NewExportService(store.Institutions, store.Users, store.Subjects, store.Scores,
		export.NewCSVExporter(true), export.NewPDFExporter(), logr.Named("exports"))

	handler.Register(r, cfg.APIPrefix, sessions, handler.Handlers{
		Auth:           handler.NewAuthHandler(sessions),
		Institutions:   handler.NewInstitutionHandler(institutions),
		Users:          handler.NewUserHandler(users),
		Subjects:       handler.NewSubjectHandler(subjects),
		Questionnaires: handler.NewQuestionnaireHandler(questionnaires),
		Responses:      handler.NewResponseHandler(survey, questionnaires),
		Evaluations:    handler.NewEvaluationHandler(evaluations, users),
		Scores:         handler.NewScoreHandler(scoring),
		Exports:        handler.NewExportHandler(exports),
		Metrics:        handler.NewMetricsHandler(metrics, store),
	})
}
