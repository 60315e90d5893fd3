package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/directory"
	"github.com/yashturmbekar/pmcrms/internal/application/service"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	applications service.ApplicationService
	actions      service.ActionService
	queries      service.QueryService
	officers     service.OfficerService
	exporter     *export.RegisterExporter
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	applications service.ApplicationService,
	actions service.ActionService,
	queries service.QueryService,
	officers service.OfficerService,
	exporter *export.RegisterExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		applications: applications,
		actions:      actions,
		queries:      queries,
		officers:     officers,
		exporter:     exporter,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ActionRequest carries an officer's approval
type ActionRequest struct {
	OfficerID int64  `json:"officer_id" binding:"required"`
	Remarks   string `json:"remarks"`
}

// RejectRequest carries an officer's rejection with its mandatory reason
type RejectRequest struct {
	OfficerID int64  `json:"officer_id" binding:"required"`
	Reason    string `json:"reason"`
}

// CloseRequest carries the administrative close decision
type CloseRequest struct {
	Actor  string `json:"actor" binding:"required"`
	Reason string `json:"reason"`
}

// PaymentConfirmRequest carries the gateway's payment reference
type PaymentConfirmRequest struct {
	Reference string `json:"reference"`
}

// ListRequest represents pagination query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (r *ListRequest) normalize() {
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	app, err := h.applications.CreateDraft(c.Request.Context(), req, "applicant")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: app})
}

// ListApplications handles GET /api/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	req.normalize()

	apps, err := h.applications.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: apps})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.applications.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// GetApplicationByNumber handles GET /api/applications/number/:number
func (h *Handlers) GetApplicationByNumber(c *gin.Context) {
	app, err := h.applications.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// SubmitApplication handles POST /api/applications/:id/submit
func (h *Handlers) SubmitApplication(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.applications.Submit(c.Request.Context(), id, "applicant")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ResubmitApplication handles POST /api/applications/:id/resubmit
func (h *Handlers) ResubmitApplication(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.applications.Resubmit(c.Request.Context(), id, "applicant")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CloseApplication handles POST /api/applications/:id/close
func (h *Handlers) CloseApplication(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := h.applications.Close(c.Request.Context(), id, req.Actor, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ConfirmPayment handles POST /api/applications/:id/payment/confirm
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req PaymentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := h.applications.ConfirmPayment(c.Request.Context(), id, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

type approveFunc func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error)

func (h *Handlers) approve(c *gin.Context, fn approveFunc) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := fn(c, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

type rejectFunc func(c *gin.Context, id int64, req RejectRequest) (*service.ActionResult, error)

func (h *Handlers) rejectAction(c *gin.Context, fn rejectFunc) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := fn(c, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ApproveJuniorEngineer handles POST /api/applications/:id/junior-engineer/approve
func (h *Handlers) ApproveJuniorEngineer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ApproveJuniorEngineer(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// RejectJuniorEngineer handles POST /api/applications/:id/junior-engineer/reject
func (h *Handlers) RejectJuniorEngineer(c *gin.Context) {
	h.rejectAction(c, func(c *gin.Context, id int64, req RejectRequest) (*service.ActionResult, error) {
		return h.actions.RejectJuniorEngineer(c.Request.Context(), id, req.OfficerID, req.Reason)
	})
}

// ApproveAssistantEngineer handles POST /api/applications/:id/assistant-engineer/approve
func (h *Handlers) ApproveAssistantEngineer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ApproveAssistantEngineer(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// RejectAssistantEngineer handles POST /api/applications/:id/assistant-engineer/reject
func (h *Handlers) RejectAssistantEngineer(c *gin.Context) {
	h.rejectAction(c, func(c *gin.Context, id int64, req RejectRequest) (*service.ActionResult, error) {
		return h.actions.RejectAssistantEngineer(c.Request.Context(), id, req.OfficerID, req.Reason)
	})
}

// ApproveExecutiveEngineer handles POST /api/applications/:id/executive-engineer/approve
func (h *Handlers) ApproveExecutiveEngineer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ApproveExecutiveEngineerStage1(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// RejectExecutiveEngineer handles POST /api/applications/:id/executive-engineer/reject
func (h *Handlers) RejectExecutiveEngineer(c *gin.Context) {
	h.rejectAction(c, func(c *gin.Context, id int64, req RejectRequest) (*service.ActionResult, error) {
		return h.actions.RejectExecutiveEngineerStage1(c.Request.Context(), id, req.OfficerID, req.Reason)
	})
}

// ApproveCityEngineer handles POST /api/applications/:id/city-engineer/approve
func (h *Handlers) ApproveCityEngineer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ApproveCityEngineerStage1(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// RejectCityEngineer handles POST /api/applications/:id/city-engineer/reject
func (h *Handlers) RejectCityEngineer(c *gin.Context) {
	h.rejectAction(c, func(c *gin.Context, id int64, req RejectRequest) (*service.ActionResult, error) {
		return h.actions.RejectCityEngineerStage1(c.Request.Context(), id, req.OfficerID, req.Reason)
	})
}

// ProcessClerk handles POST /api/applications/:id/clerk/process
func (h *Handlers) ProcessClerk(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ProcessClerk(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// CompleteExecutiveSignature handles POST /api/applications/:id/executive-engineer/signature
func (h *Handlers) CompleteExecutiveSignature(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.CompleteExecutiveSignature(c.Request.Context(), id, req.OfficerID)
	})
}

// ApproveCityEngineerFinal handles POST /api/applications/:id/city-engineer/final-approve
func (h *Handlers) ApproveCityEngineerFinal(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, req ActionRequest) (*service.ActionResult, error) {
		return h.actions.ApproveCityEngineerFinal(c.Request.Context(), id, req.OfficerID, req.Remarks)
	})
}

// GetWorkflowStage handles GET /api/applications/:id/stage
func (h *Handlers) GetWorkflowStage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	stage, err := h.queries.GetWorkflowStage(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stage})
}

// GetWorkflowHistory handles GET /api/applications/:id/history
func (h *Handlers) GetWorkflowHistory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.queries.GetWorkflowHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// OnboardOfficer handles POST /api/officers
func (h *Handlers) OnboardOfficer(c *gin.Context) {
	var req service.OnboardOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	officer, err := h.officers.Onboard(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: officer})
}

// ListOfficers handles GET /api/officers
func (h *Handlers) ListOfficers(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	req.normalize()

	officers, err := h.officers.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: officers})
}

// GetOfficer handles GET /api/officers/:id
func (h *Handlers) GetOfficer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	officer, err := h.officers.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: officer})
}

// SetOfficerActive handles PATCH /api/officers/:id/active
func (h *Handlers) SetOfficerActive(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	if err := h.officers.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportRegister handles GET /api/reports/applications.xlsx
func (h *Handlers) ExportRegister(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	if req.Limit <= 0 || req.Limit > 10000 {
		req.Limit = 1000
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	data, err := h.exporter.Export(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="applications.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// fail maps application errors to HTTP status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrApplicationNotFound),
		errors.Is(err, directory.ErrOfficerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotAssignee):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrWrongStage),
		errors.Is(err, workflow.ErrInvalidStageForProgression),
		errors.Is(err, workflow.ErrNoOfficerAvailable),
		errors.Is(err, domainwf.ErrIllegalTransition):
		status = http.StatusConflict
	case errors.Is(err, service.ErrMissingReason),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrMissingApplicant),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, domainwf.ErrInvalidStatus):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}
