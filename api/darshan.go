package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mandirtech/edarshan/internal/repository"
	"github.com/mandirtech/edarshan/internal/service/booking"
	"github.com/mandirtech/edarshan/internal/wizard"
)

// DarshanHandler drives the six-step booking wizard over HTTP. The draft
// lives server-side; each request carries its ID.
type DarshanHandler struct {
	service booking.BookingUseCase
}

func NewDarshanHandler(service booking.BookingUseCase) *DarshanHandler {
	return &DarshanHandler{service: service}
}

func (h *DarshanHandler) Register(router *gin.RouterGroup) {
	router.POST("/drafts", h.startDraft)
	router.GET("/drafts/:id", h.getDraft)
	router.POST("/drafts/:id/steps/:step", h.applyStep)
	router.POST("/drafts/:id/back", h.back)
}

// RegisterPayments mounts the payment stub endpoints the SPA calls after the
// wizard's payment step.
func (h *DarshanHandler) RegisterPayments(router *gin.RouterGroup) {
	router.POST("/checkout", h.checkout)
	router.GET("/confirm", h.confirm)
}

func (h *DarshanHandler) startDraft(c *gin.Context) {
	draft, err := h.service.StartDraft(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *DarshanHandler) getDraft(c *gin.Context) {
	draft, err := h.service.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DarshanHandler) applyStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}

	var input booking.StepInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.service.ApplyStep(c.Request.Context(), c.Param("id"), wizard.Step(step), input)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DarshanHandler) back(c *gin.Context) {
	draft, err := h.service.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type checkoutRequest struct {
	DraftID string `json:"draft_id" binding:"required"`
}

func (h *DarshanHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), req.DraftID, userID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *DarshanHandler) confirm(c *gin.Context) {
	token := c.Query("ticket_id")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket_id is required"})
		return
	}

	conf, err := h.service.Confirm(c.Request.Context(), token, c.Query("draft_id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

func renderError(c *gin.Context, err error) {
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": vErr.Fields})
	case errors.Is(err, booking.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrBookingNotFound), errors.Is(err, repository.ErrTempleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotHeld), errors.Is(err, repository.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrDraftIncomplete),
		errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrStepNotReached),
		errors.Is(err, wizard.ErrTicketBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
