package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"traffic-service/internal/http/middleware"
	"traffic-service/internal/model"
	"traffic-service/internal/service"
)

func (h *Handler) issueViolation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		VehicleID       string `json:"vehicle_id"`
		OfficerID       string `json:"officer_id"`
		ViolationTypeID string `json:"violation_type_id"`
		Location        string `json:"location"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("malformed request body"))
		return
	}

	input := service.IssueInput{Location: req.Location, Notes: req.Notes}
	var err error
	if input.VehicleID, err = parseOptionalUUID(req.VehicleID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
		return
	}
	if input.OfficerID, err = parseOptionalUUID(req.OfficerID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid officer_id"))
		return
	}
	if input.ViolationTypeID, err = parseOptionalUUID(req.ViolationTypeID); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid violation_type_id"))
		return
	}

	result, err := h.violations.Issue(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse("Violation recorded", result))
}

func (h *Handler) listViolations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseViolationQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.violations.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) getViolation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.violations.GetDetails(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(details))
}

func (h *Handler) updateViolationStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		ID     string `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("id and status are required"))
		return
	}

	id, err := parseOptionalUUID(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
		return
	}
	status := model.ViolationStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	if err := h.violations.UpdateStatus(c.Request.Context(), principal, id, status, req.Notes); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse("Status updated", gin.H{}))
}

func (h *Handler) listViolationTypes(c *gin.Context) {
	types, err := h.violations.ListTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(types))
}

func parseViolationQuery(c *gin.Context) (service.ListViolationsOptions, error) {
	var opts service.ListViolationsOptions

	if statusParam := strings.TrimSpace(c.Query("status")); statusParam != "" && !strings.EqualFold(statusParam, "all") {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.ViolationStatus(strings.ToLower(val)))
		}
	}
	if officerID := strings.TrimSpace(c.Query("officer_id")); officerID != "" {
		id, err := parseOptionalUUID(officerID)
		if err != nil {
			return opts, errors.New("invalid officer_id")
		}
		opts.OfficerID = &id
	}
	if vehicleID := strings.TrimSpace(c.Query("vehicle_id")); vehicleID != "" {
		id, err := parseOptionalUUID(vehicleID)
		if err != nil {
			return opts, errors.New("invalid vehicle_id")
		}
		opts.VehicleID = &id
	}
	if dateFrom := strings.TrimSpace(c.Query("date_from")); dateFrom != "" {
		ts, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			return opts, errors.New("date_from must be RFC3339")
		}
		opts.DateFrom = &ts
	}
	if dateTo := strings.TrimSpace(c.Query("date_to")); dateTo != "" {
		ts, err := time.Parse(time.RFC3339, dateTo)
		if err != nil {
			return opts, errors.New("date_to must be RFC3339")
		}
		opts.DateTo = &ts
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := strings.TrimSpace(c.Query("offset")); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}

	opts.Search = strings.TrimSpace(c.Query("search"))

	return opts, nil
}
