package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/export"
	"github.com/mandirtech/edarshan/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	ID              int64  `json:"_id"`
	Token           string `json:"token"`
	Temple          string `json:"temple"`
	DevoteeName     string `json:"devoteeName"`
	VisitDate       string `json:"selectedDate"`
	TimeSlot        string `json:"timeSlot"`
	TicketType      string `json:"ticketType"`
	NumberOfTickets int    `json:"numberOfTickets"`
	TotalPrice      int64  `json:"totalPrice"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentStatus   string `json:"paymentStatus"`
	CreatedAt       string `json:"createdAt"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id/cancel", h.cancel)
	router.GET("/:id/export/json", h.exportJSON)
	router.GET("/:id/export/pdf", h.exportPDF)
	router.GET("/:id/export/calendar", h.exportCalendar)
}

func (h *BookingHandler) create(c *gin.Context) {
	var input booking.StepInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID(c), input)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(&b))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) exportJSON(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	payload, filename, err := export.BookingJSON(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *BookingHandler) exportPDF(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	payload, filename, err := export.TicketPDF(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

func (h *BookingHandler) exportCalendar(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	link, err := export.CalendarURL(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *BookingHandler) load(c *gin.Context) (*domain.Booking, bool) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		renderError(c, err)
		return nil, false
	}
	return b, true
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		Token:           b.Token,
		Temple:          b.TempleName,
		DevoteeName:     b.DevoteeName,
		VisitDate:       b.VisitDate,
		TimeSlot:        b.TimeSlot,
		TicketType:      string(b.TicketType),
		NumberOfTickets: b.NumberOfTickets,
		TotalPrice:      b.TotalAmount,
		PaymentMethod:   string(b.PaymentMethod),
		PaymentStatus:   string(b.Status),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}
