package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/pkg/response"
)

type exportService interface {
	TeachersCSV(ctx context.Context, institutionID string) ([]byte, error)
	StudentsCSV(ctx context.Context, institutionID string) ([]byte, error)
	ReportCSV(ctx context.Context, institutionID string) ([]byte, error)
	ReportPDF(ctx context.Context, institutionID string) ([]byte, error)
}

type renderFunc func(ctx context.Context, institutionID string) ([]byte, error)

const (
	contentTypeCSV = "text/csv; charset=utf-8"
	contentTypePDF = "application/pdf"
)

// ExportHandler streams roster and report downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Teachers godoc
// @Summary Teacher roster
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Institution ID"
// @Success 200 {file} file
// @Router /exports/institutions/{id}/teachers.csv [get]
func (h *ExportHandler) Teachers(c *gin.Context) {
	h.download(c, h.service.TeachersCSV, "teachers.csv", contentTypeCSV)
}

// Students godoc
// @Summary Student roster
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Institution ID"
// @Success 200 {file} file
// @Router /exports/institutions/{id}/students.csv [get]
func (h *ExportHandler) Students(c *gin.Context) {
	h.download(c, h.service.StudentsCSV, "students.csv", contentTypeCSV)
}

// ReportCSV godoc
// @Summary Performance report
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Institution ID"
// @Success 200 {file} file
// @Router /exports/institutions/{id}/report.csv [get]
func (h *ExportHandler) ReportCSV(c *gin.Context) {
	h.download(c, h.service.ReportCSV, "report.csv", contentTypeCSV)
}

// ReportPDF godoc
// @Summary Printable performance report
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Institution ID"
// @Success 200 {file} file
// @Router /exports/institutions/{id}/report.pdf [get]
func (h *ExportHandler) ReportPDF(c *gin.Context) {
	h.download(c, h.service.ReportPDF, "report.pdf", contentTypePDF)
}

func (h *ExportHandler) download(c *gin.Context, render renderFunc, name, contentType string) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	institutionID := c.Param("id")
	if err := authorizeInstitution(claims, institutionID); err != nil {
		response.Error(c, err)
		return
	}

	data, err := render(c.Request.Context(), institutionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, institutionID+"-"+name, contentType, data)
}
