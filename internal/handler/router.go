package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/middleware"
	"github.com/noah-isme/teacher-eval-api/internal/models"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth           *AuthHandler
	Institutions   *InstitutionHandler
	Users          *UserHandler
	Subjects       *SubjectHandler
	Questionnaires *QuestionnaireHandler
	Responses      *ResponseHandler
	Evaluations    *EvaluationHandler
	Scores         *ScoreHandler
	Exports        *ExportHandler
	Metrics        *MetricsHandler
}

// Register mounts the operational endpoints at the root and the API under prefix.
func Register(r *gin.Engine, prefix string, tokens middleware.TokenValidator, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.GET("/setup", h.Auth.SetupStatus)
	api.POST("/setup", h.Auth.Setup)
	api.POST("/auth/login", h.Auth.Login)

	session := api.Group("/auth", middleware.JWT(tokens))
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)
	session.POST("/change-password", h.Auth.ChangePassword)

	protected := api.Group("", middleware.JWT(tokens), middleware.PasswordGate())
	admins := middleware.RequireRoles(middleware.Administrators...)
	superAdmin := middleware.RequireRoles(models.RoleSuperAdmin)

	institutions := protected.Group("/institutions")
	institutions.GET("", h.Institutions.List)
	institutions.POST("", superAdmin, h.Institutions.Create)
	institutions.GET("/:id", h.Institutions.Get)
	institutions.PUT("/:id", superAdmin, h.Institutions.Update)
	institutions.DELETE("/:id", superAdmin, h.Institutions.Delete)
	institutions.PUT("/:id/evaluation-period", admins, h.Institutions.SetEvaluationPeriod)

	users := protected.Group("/users")
	users.GET("", admins, h.Users.List)
	users.POST("/students", admins, h.Users.CreateStudent)
	users.POST("/teachers", admins, h.Users.CreateTeacher)
	users.POST("/class-heads", admins, h.Users.CreateClassHead)
	users.POST("/managers", superAdmin, h.Users.CreateManager)
	users.GET("/:id", middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleInstitutionManager), middleware.AllowSelf), h.Users.Get)
	users.POST("/:id/promote", admins, h.Users.Promote)
	users.POST("/:id/approve", admins, h.Users.Approve)
	users.DELETE("/:id", admins, h.Users.Delete)

	subjects := protected.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.POST("", admins, h.Subjects.Create)
	subjects.DELETE("/:id", admins, h.Subjects.Delete)

	protected.GET("/questionnaires", h.Questionnaires.Get)
	protected.PUT("/questionnaires", admins, h.Questionnaires.Save)

	protected.POST("/responses", middleware.RequireRoles(middleware.Evaluators...), h.Responses.Submit)
	protected.GET("/responses", admins, h.Responses.List)

	protected.PUT("/self-evaluations", middleware.RequireRoles(models.RoleTeacher), h.Evaluations.SaveSelfEval)
	protected.GET("/self-evaluations/:teacherId", h.Evaluations.GetSelfEval)
	protected.PUT("/qualitative-evaluations", admins, h.Evaluations.SaveQualitativeEval)
	protected.GET("/qualitative-evaluations/:teacherId", h.Evaluations.GetQualitativeEval)

	protected.GET("/scores", admins, h.Scores.List)
	protected.POST("/scores/calculate", admins, h.Scores.Calculate)

	exports := protected.Group("/exports/institutions/:id", admins)
	exports.GET("/teachers.csv", h.Exports.Teachers)
	exports.GET("/students.csv", h.Exports.Students)
	exports.GET("/report.csv", h.Exports.ReportCSV)
	exports.GET("/report.pdf", h.Exports.ReportPDF)
}
