package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traffic-service/internal/model"
	"traffic-service/internal/service"
)

type vehicleRequest struct {
	LicensePlate string `json:"license_plate"`
	OwnerName    string `json:"owner_name"`
	OwnerPhone   string `json:"owner_phone"`
	OwnerEmail   string `json:"owner_email"`
	VehicleType  string `json:"vehicle_type"`
}

func (r vehicleRequest) input() service.VehicleInput {
	return service.VehicleInput{
		LicensePlate: r.LicensePlate,
		OwnerName:    r.OwnerName,
		OwnerPhone:   r.OwnerPhone,
		OwnerEmail:   r.OwnerEmail,
		Type:         model.VehicleType(strings.ToLower(strings.TrimSpace(r.VehicleType))),
	}
}

func (h *Handler) searchVehicle(c *gin.Context) {
	vehicle, err := h.vehicles.SearchByPlate(c.Request.Context(), c.Query("license_plate"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) getOrCreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("malformed request body"))
		return
	}

	vehicle, created, err := h.vehicles.GetOrCreate(c.Request.Context(), req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, successResponse(vehicle))
}

func (h *Handler) updateVehicleOwner(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("malformed request body"))
		return
	}

	vehicle, err := h.vehicles.UpdateOwner(c.Request.Context(), id, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) vehicleStats(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.vehicles.Stats(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}
