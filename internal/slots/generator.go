package slots

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/mandirtech/edarshan/internal/domain"
)

const (
	estimateMin = 50
	estimateMax = 150
)

// Thresholds maps an availability count to a crowd tier. The direction is
// "more availability = less crowded": available > LowMin is low, > MediumMin
// is medium, anything else high.
type Thresholds struct {
	LowMin    int
	MediumMin int
}

func DefaultThresholds() Thresholds {
	return Thresholds{LowMin: 120, MediumMin: 80}
}

func (t Thresholds) Level(available int) domain.CrowdLevel {
	switch {
	case available > t.LowMin:
		return domain.CrowdLow
	case available > t.MediumMin:
		return domain.CrowdMedium
	default:
		return domain.CrowdHigh
	}
}

// BookedFunc reports how many tickets already hold a given slot time.
type BookedFunc func(slot string) int

// Generator derives darshan slots from a temple's operating hours. The rand
// source backs the per-slot availability estimate and is injected so tests
// can pin it. One Generator is shared across requests, and rand.Rand is not
// safe for concurrent use, so draws go through the mutex.
type Generator struct {
	stepHours  int
	thresholds Thresholds

	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(stepHours int, thresholds Thresholds, rng *rand.Rand) *Generator {
	if stepHours <= 0 {
		stepHours = 2
	}
	return &Generator{stepHours: stepHours, thresholds: thresholds, rng: rng}
}

// Generate produces one slot per step hour in [open, close). Availability is
// the estimate minus already-booked tickets, clamped at zero.
func (g *Generator) Generate(temple domain.Temple, booked BookedFunc) ([]domain.Slot, error) {
	openHour, err := parseHour(temple.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	closeHour, err := parseHour(temple.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("close time: %w", err)
	}
	if closeHour <= openHour {
		return nil, fmt.Errorf("temple closes (%s) before it opens (%s)", temple.CloseTime, temple.OpenTime)
	}

	out := make([]domain.Slot, 0, (closeHour-openHour)/g.stepHours)
	for h := openHour; h < closeHour; h += g.stepHours {
		t := fmt.Sprintf("%02d:00", h)
		available := g.estimate()
		if booked != nil {
			available -= booked(t)
		}
		if available < 0 {
			available = 0
		}
		level := g.thresholds.Level(available)
		out = append(out, domain.Slot{
			Time:        t,
			Available:   available,
			Total:       temple.Capacity,
			CrowdLevel:  level,
			WaitMinutes: level.WaitMinutes(),
		})
	}
	return out, nil
}

func (g *Generator) estimate() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return estimateMin + g.rng.Intn(estimateMax-estimateMin)
}

func parseHour(hhmm string) (int, error) {
	h, _, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	return hour, nil
}
