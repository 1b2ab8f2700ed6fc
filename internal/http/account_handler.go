package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traffic-service/internal/http/middleware"
	"traffic-service/internal/service"
)

type officerRequest struct {
	ServiceNumber string `json:"service_number" binding:"required"`
	FullName      string `json:"full_name" binding:"required"`
	Rank          string `json:"rank"`
	Station       string `json:"station"`
	PIN           string `json:"pin" binding:"required"`
}

func (r officerRequest) input() service.OfficerInput {
	return service.OfficerInput{
		ServiceNumber: r.ServiceNumber,
		FullName:      r.FullName,
		Rank:          r.Rank,
		Station:       r.Station,
		PIN:           r.PIN,
	}
}

func (h *Handler) officerLogin(c *gin.Context) {
	var req struct {
		ServiceNumber string `json:"service_number" binding:"required"`
		PIN           string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("service_number and pin are required"))
		return
	}

	session, err := h.accounts.OfficerLogin(c.Request.Context(), req.ServiceNumber, req.PIN)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse("Login successful", session))
}

func (h *Handler) registerOfficer(c *gin.Context) {
	var req officerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("service_number, full_name and pin are required"))
		return
	}

	officer, err := h.accounts.RegisterOfficer(c.Request.Context(), req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse("Registration received, awaiting activation", officer))
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("username and password are required"))
		return
	}

	session, err := h.accounts.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse("Login successful", session))
}

func (h *Handler) createOfficer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req officerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("service_number, full_name and pin are required"))
		return
	}

	officer, err := h.accounts.CreateOfficer(c.Request.Context(), principal, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(officer))
}

func (h *Handler) updateOfficer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool   `json:"is_active"`
		FullName *string `json:"full_name"`
		Rank     *string `json:"rank"`
		Station  *string `json:"station"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("malformed request body"))
		return
	}

	officer, err := h.accounts.UpdateOfficer(c.Request.Context(), principal, id, service.OfficerUpdateInput{
		IsActive: req.IsActive,
		FullName: req.FullName,
		Rank:     req.Rank,
		Station:  req.Station,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(officer))
}

func (h *Handler) listOfficers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	officers, err := h.accounts.ListOfficers(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(officers))
}

func (h *Handler) dashboardStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	stats, err := h.stats.Dashboard(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) statsBreakdown(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	breakdown, err := h.stats.Breakdown(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(breakdown))
}
