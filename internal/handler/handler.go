package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/service"
	"go.uber.org/zap"
)

// Handler структурирует зависимости сервисов для обработки HTTP-запросов.
type Handler struct {
	bookings *service.BookingService
	loyalty  *service.LoyaltyService
	capacity *service.CapacityService
	resolver *service.GuideResolver
	logger   *zap.Logger
}

// NewHandler создает новый Handler с внедрением зависимостей (сервисов).
func NewHandler(bs *service.BookingService, ls *service.LoyaltyService, cs *service.CapacityService, gr *service.GuideResolver, logger *zap.Logger) *Handler {
	return &Handler{
		bookings: bs,
		loyalty:  ls,
		capacity: cs,
		resolver: gr,
		logger:   logger,
	}
}

// Routes регистрирует маршруты API на роутере
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:id", h.GetBooking)
		api.GET("/bookings/code/:code", h.GetBookingByCode)
		api.PUT("/bookings/:id", h.UpdateBooking)
		api.DELETE("/bookings/:id", h.DeleteBooking)
		api.POST("/bookings/:id/status", h.TransitionStatus)
		api.POST("/bookings/:id/payment", h.RecordPayment)
		api.POST("/bookings/:id/cancel", h.CancelBooking)
		api.POST("/bookings/:id/guide", h.AssignGuide)

		api.GET("/users/:id/bookings", h.ListUserBookings)
		api.GET("/users/:id/points", h.PointsStatement)

		api.GET("/tours/:id/departures", h.ListDepartures)
		api.GET("/tours/:id/guides", h.ListGuideCandidates)

		api.GET("/departures/:id/availability", h.CheckDepartureAvailability)
	}
}

// httpStatus отображает классификацию бизнес-ошибки в статус-код.
// Единственное место, где ошибки сервисов превращаются в HTTP.
func httpStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Unauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// actorID действующий пользователь из заголовка X-User-ID.
// Временная замена полноценной аутентификации.
func actorID(c *gin.Context) *int64 {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// Health обработчик для GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateBooking обработчик для POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	actor := actorID(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return
	}

	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, warning, err := h.bookings.CreateBooking(c.Request.Context(), *actor, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{"booking": booking}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBooking обработчик для GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetBookingByCode обработчик для GET /api/bookings/code/:code
func (h *Handler) GetBookingByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	booking, err := h.bookings.GetBookingByCode(c.Request.Context(), code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking обработчик для DELETE /api/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), id, actorID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateBooking обработчик для PUT /api/bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := h.bookings.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransitionStatus обработчик для POST /api/bookings/:id/status
func (h *Handler) TransitionStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	booking, err := h.bookings.TransitionStatus(c.Request.Context(), id, req.Status, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// RecordPayment обработчик для POST /api/bookings/:id/payment
func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req service.PaymentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := h.bookings.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking обработчик для POST /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	// Тело запроса необязательно: отмена без причины допустима
	var req service.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type assignGuideRequest struct {
	GuideID *int64 `json:"guide_id"`
}

// AssignGuide обработчик для POST /api/bookings/:id/guide
func (h *Handler) AssignGuide(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req assignGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, warning, err := h.bookings.AssignGuide(c.Request.Context(), id, req.GuideID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{"booking": booking}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// ListUserBookings обработчик для GET /api/users/:id/bookings
func (h *Handler) ListUserBookings(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListUserBookings(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// PointsStatement обработчик для GET /api/users/:id/points
func (h *Handler) PointsStatement(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	user, entries, err := h.loyalty.Statement(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": user.LoyaltyPoints,
		"tier":    user.MemberTier,
		"history": entries,
	})
}

// ListDepartures обработчик для GET /api/tours/:id/departures?from=YYYY-MM-DD
func (h *Handler) ListDepartures(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}

	departures, err := h.capacity.ListAvailableDepartures(c.Request.Context(), id, from)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, departures)
}

// CheckDepartureAvailability обработчик для
// GET /api/departures/:id/availability?guests=N
func (h *Handler) CheckDepartureAvailability(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	guests := 1
	if raw := c.Query("guests"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guests must be a positive number"})
			return
		}
		guests = parsed
	}

	available, err := h.capacity.CheckAvailability(c.Request.Context(), id, guests)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available, "guests": guests})
}

// ListGuideCandidates обработчик для GET /api/tours/:id/guides?date=YYYY-MM-DD
func (h *Handler) ListGuideCandidates(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	candidates, err := h.resolver.ListCandidates(c.Request.Context(), id, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}
