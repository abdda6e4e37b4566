package slots

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func temple(open, close string) domain.Temple {
	return domain.Temple{
		ID:        1,
		Name:      "Somnath Temple",
		Capacity:  150,
		OpenTime:  open,
		CloseTime: close,
	}
}

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(2, DefaultThresholds(), rand.New(rand.NewSource(seed)))
}

func TestGenerateSlotTimes(t *testing.T) {
	g := newTestGenerator(1)

	out, err := g.Generate(temple("06:00", "20:00"), nil)
	require.NoError(t, err)

	// 06:00 through 18:00 in two-hour steps: exactly seven slots.
	require.Len(t, out, 7)
	want := []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00"}
	for i, s := range out {
		assert.Equal(t, want[i], s.Time)
		assert.Equal(t, 150, s.Total)
	}
}

func TestGenerateWaitTimesMatchCrowdLevels(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		out, err := newTestGenerator(seed).Generate(temple("06:00", "20:00"), nil)
		require.NoError(t, err)

		for _, s := range out {
			switch s.CrowdLevel {
			case domain.CrowdLow:
				assert.Equal(t, 10, s.WaitMinutes)
				assert.Greater(t, s.Available, 120)
			case domain.CrowdMedium:
				assert.Equal(t, 25, s.WaitMinutes)
				assert.Greater(t, s.Available, 80)
				assert.LessOrEqual(t, s.Available, 120)
			case domain.CrowdHigh:
				assert.Equal(t, 45, s.WaitMinutes)
				assert.LessOrEqual(t, s.Available, 80)
			default:
				t.Fatalf("unexpected crowd level %q", s.CrowdLevel)
			}
		}
	}
}

func TestGenerateEstimateRange(t *testing.T) {
	out, err := newTestGenerator(7).Generate(temple("06:00", "20:00"), nil)
	require.NoError(t, err)

	for _, s := range out {
		assert.GreaterOrEqual(t, s.Available, 50)
		assert.Less(t, s.Available, 150)
	}
}

func TestGenerateSubtractsBookedTickets(t *testing.T) {
	seed := int64(3)
	base, err := newTestGenerator(seed).Generate(temple("06:00", "20:00"), nil)
	require.NoError(t, err)

	booked := map[string]int{"06:00": 10, "18:00": 10_000}
	out, err := newTestGenerator(seed).Generate(temple("06:00", "20:00"), func(slot string) int {
		return booked[slot]
	})
	require.NoError(t, err)

	assert.Equal(t, base[0].Available-10, out[0].Available)
	// Heavy booking clamps at zero instead of going negative.
	assert.Zero(t, out[6].Available)
	assert.Equal(t, domain.CrowdHigh, out[6].CrowdLevel)
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	a, err := newTestGenerator(42).Generate(temple("06:00", "20:00"), nil)
	require.NoError(t, err)
	b, err := newTestGenerator(42).Generate(temple("06:00", "20:00"), nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsMalformedHours(t *testing.T) {
	g := newTestGenerator(1)

	_, err := g.Generate(temple("dawn", "20:00"), nil)
	assert.Error(t, err)

	_, err = g.Generate(temple("20:00", "06:00"), nil)
	assert.Error(t, err)
}

// One Generator serves every request; this must stay race-clean under -race.
func TestGenerateConcurrentUse(t *testing.T) {
	g := newTestGenerator(1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				out, err := g.Generate(temple("06:00", "20:00"), nil)
				assert.NoError(t, err)
				assert.Len(t, out, 7)
			}
		}()
	}
	wg.Wait()
}

func TestThresholdDirectionIsConfigurable(t *testing.T) {
	// A temple that treats anything under 100 as crowded.
	strict := Thresholds{LowMin: 140, MediumMin: 100}
	assert.Equal(t, domain.CrowdLow, strict.Level(141))
	assert.Equal(t, domain.CrowdMedium, strict.Level(101))
	assert.Equal(t, domain.CrowdHigh, strict.Level(100))
}
