package handlers

import (
	"net/http"

	"dts_backend/internal/middleware"
	"dts_backend/internal/models"
	"dts_backend/internal/services"
	"dts_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type StationHandler struct {
	*BaseHandler
	stationService services.StationService
}

func NewStationHandler(base *BaseHandler, stationService services.StationService) *StationHandler {
	return &StationHandler{
		BaseHandler:    base,
		stationService: stationService,
	}
}

// RegisterRoutes регистрирует маршруты станций
func (h *StationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stations := rg.Group("/stations")
	stations.Use(middleware.AuthMiddleware())
	{
		stations.GET("", h.ListStations)
		stations.GET("/:id", h.GetStation)
	}

	admin := rg.Group("/admin/stations")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateStation)
		admin.PUT("/:id", h.UpdateStation)
	}
}

func (h *StationHandler) ListStations(c *gin.Context) {
	stations, err := h.stationService.ListStations()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stations)
}

func (h *StationHandler) GetStation(c *gin.Context) {
	station, err := h.stationService.GetStation(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, station)
}

func (h *StationHandler) CreateStation(c *gin.Context) {
	var req dto.CreateStationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	station, err := h.stationService.CreateStation(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, station)
}

func (h *StationHandler) UpdateStation(c *gin.Context) {
	var req dto.CreateStationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	station, err := h.stationService.UpdateStation(c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, station)
}
