package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *management.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *management.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts lead routes. The group must already require
// authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	privileged := httpkit.RequireAnyRole(httpkit.RoleTeamLead, httpkit.RoleAdmin)

	rg.GET("/statuses", h.Statuses)
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/assign", privileged, h.BulkAssign)
	rg.POST("/import", privileged, h.Import)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.GET("/:id/history", h.History)
}

func (h *Handler) Statuses(c *gin.Context) {
	httpkit.OK(c, h.svc.Statuses())
}

func (h *Handler) List(c *gin.Context) {
	req := transport.ListLeadsRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if !h.validate(c, req) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if !h.validate(c, req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if req.Status == "" {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(map[string]string{"status": "required"}))
		return
	}

	// Catalog membership is checked by the service so the response lists the
	// allowed statuses.
	lead, err := h.svc.ChangeStatus(c.Request.Context(), id, actorFrom(c), req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.svc.History(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) BulkAssign(c *gin.Context) {
	var req transport.AssignLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if !h.validate(c, req) {
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Import(c *gin.Context) {
	var req transport.ImportLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if !h.validate(c, req) {
		return
	}

	result, err := h.svc.Import(c.Request.Context(), actorFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) validate(c *gin.Context, req interface{}) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return false
	}
	return true
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return uuid.UUID{}, false
	}
	return id, true
}

func actorFrom(c *gin.Context) management.Actor {
	id := httpkit.GetIdentity(c)
	return management.Actor{ID: id.UserID(), Privileged: id.IsPrivileged()}
}
