package handlers

import (
	"net/http"

	"dts_backend/internal/middleware"
	"dts_backend/internal/models"
	"dts_backend/internal/services"
	"dts_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
}

func NewBookingHandler(base *BaseHandler, bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
	}
}

// RegisterRoutes регистрирует маршруты записи на экзамен
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware())
	{
		bookings.POST("", h.RequestBooking)
		bookings.GET("/my", h.ListMyBookings)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	staff := rg.Group("/bookings")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.RequireRoles(models.UserRoleInstructor, models.UserRoleAdmin))
	{
		staff.POST("/:id/confirm", h.ConfirmBooking)
		staff.POST("/:id/complete", h.CompleteBooking)
	}

	stations := rg.Group("/stations")
	stations.Use(middleware.AuthMiddleware())
	{
		// Роут: GET /api/v1/stations/:id/slots?from=...&to=...
		stations.GET("/:id/slots", h.ListAvailableSlots)
	}

	schedule := rg.Group("/stations")
	schedule.Use(middleware.AuthMiddleware())
	schedule.Use(middleware.RequireRoles(models.UserRoleInstructor, models.UserRoleAdmin))
	{
		// Роут: GET /api/v1/stations/:id/bookings?from=...&to=...
		schedule.GET("/:id/bookings", h.ListStationSchedule)
	}

	results := rg.Group("/results")
	results.Use(middleware.AuthMiddleware())
	results.Use(middleware.RequireRoles(models.UserRoleInstructor, models.UserRoleAdmin))
	{
		// Роут: GET /api/v1/results?date=YYYY-MM-DD
		results.GET("", h.ResultsByDate)
	}
}

func (h *BookingHandler) RequestBooking(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	// Учащийся записывает только себя; персонал может указать learner_id.
	role := middleware.GetUserRole(c)
	if role == models.UserRoleLearner || req.LearnerID == "" {
		req.LearnerID = userID
	}

	booking, err := h.bookingService.RequestBooking(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListBookingsByLearner(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.ConfirmBooking(c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.bookingService.CancelBooking(c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CompleteBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.CompleteBooking(c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) ListAvailableSlots(c *gin.Context) {
	from, to, err := ParseQueryTimeRange(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	slots, err := h.bookingService.ListAvailableSlots(c.Param("id"), from, to)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (h *BookingHandler) ListStationSchedule(c *gin.Context) {
	from, to, err := ParseQueryTimeRange(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	bookings, err := h.bookingService.ListStationSchedule(c.Param("id"), from, to)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ResultsByDate(c *gin.Context) {
	date, err := ParseQueryDate(c, "date")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	summary, err := h.bookingService.ResultsByDate(date)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
