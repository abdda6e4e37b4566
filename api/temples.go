package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/repository"
	"github.com/mandirtech/edarshan/internal/service/temples"
)

// SlotLister regenerates the bookable slots for a temple and date.
type SlotLister interface {
	SlotsForTemple(ctx context.Context, templeID int64, visitDate string) ([]domain.Slot, error)
}

type TempleHandler struct {
	service temples.TempleUseCase
	slots   SlotLister
}

type templeResponse struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Location     string              `json:"location"`
	Capacity     int                 `json:"capacity"`
	OpenTime     string              `json:"openTime"`
	CloseTime    string              `json:"closeTime"`
	TicketPrices domain.TicketPrices `json:"ticketPrices"`
}

func NewTempleHandler(service temples.TempleUseCase, slots SlotLister) *TempleHandler {
	return &TempleHandler{service: service, slots: slots}
}

func (h *TempleHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/visit", h.visit)
	router.GET("/:id/slots", h.listSlots)
}

func (h *TempleHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load temples"})
		return
	}

	out := make([]templeResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTempleResponse(&t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TempleHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	temple, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTempleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "temple not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toTempleResponse(temple))
}

func (h *TempleHandler) visit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	visits, err := h.service.RecordVisit(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTempleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "temple not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templeId": id, "visits": visits})
}

func (h *TempleHandler) listSlots(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	list, err := h.slots.SlotsForTemple(c.Request.Context(), id, date)
	if err != nil {
		if errors.Is(err, repository.ErrTempleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "temple not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": list})
}

func toTempleResponse(t *domain.Temple) templeResponse {
	return templeResponse{
		ID:           t.ID,
		Name:         t.Name,
		Location:     t.Location,
		Capacity:     t.Capacity,
		OpenTime:     t.OpenTime,
		CloseTime:    t.CloseTime,
		TicketPrices: t.TicketPrices,
	}
}
