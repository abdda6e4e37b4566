package wizard

import (
	"testing"
	"time"

	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dwarkadhish() *domain.Temple {
	return &domain.Temple{
		ID:        1,
		Name:      "Dwarkadhish Temple",
		Location:  "Dwarka, Gujarat",
		Capacity:  150,
		OpenTime:  "06:00",
		CloseTime: "20:00",
		TicketPrices: domain.TicketPrices{
			Regular: 50,
			VIP:     200,
			Senior:  30,
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft("d1", time.Now())

	assert.Equal(t, StepTemple, d.Step)
	assert.Equal(t, domain.TicketTypeRegular, d.TicketType)
	assert.Equal(t, 1, d.NumberOfTickets)
	assert.Zero(t, d.TotalAmount)
}

func TestApplyStepAdvancesAndMerges(t *testing.T) {
	d := NewDraft("d1", time.Now())

	prevTickets := d.NumberOfTickets
	err := d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()})
	require.NoError(t, err)

	assert.Equal(t, StepSlot, d.Step)
	assert.Equal(t, "Dwarkadhish Temple", d.Temple.Name)
	// Merge keeps everything the step did not touch.
	assert.Equal(t, prevTickets, d.NumberOfTickets)
	assert.Equal(t, domain.TicketTypeRegular, d.TicketType)
}

func TestApplyStepRejectsStepsAhead(t *testing.T) {
	d := NewDraft("d1", time.Now())

	err := d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(2)})
	assert.ErrorIs(t, err, ErrStepNotReached)
	assert.Equal(t, StepTemple, d.Step)
}

func TestApplyStepRejectsOutOfRange(t *testing.T) {
	d := NewDraft("d1", time.Now())

	assert.ErrorIs(t, d.ApplyStep(0, StepData{}), ErrInvalidStep)
	assert.ErrorIs(t, d.ApplyStep(7, StepData{}), ErrInvalidStep)
}

func TestBackNeverGoesBelowFirstStep(t *testing.T) {
	d := NewDraft("d1", time.Now())

	d.Back()
	assert.Equal(t, StepTemple, d.Step)

	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.Equal(t, StepSlot, d.Step)

	d.Back()
	assert.Equal(t, StepTemple, d.Step)
}

func TestTotalAmountTracksTicketInputs(t *testing.T) {
	d := NewDraft("d1", time.Now())
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))

	for n := 1; n <= 10; n++ {
		require.NoError(t, d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(n)}))
		assert.Equal(t, int64(50*n), d.TotalAmount)
	}

	// Changing the ticket type recomputes the total without touching the count.
	require.NoError(t, d.ApplyStep(StepTickets, StepData{TicketType: ptr(domain.TicketTypeVIP)}))
	assert.Equal(t, 10, d.NumberOfTickets)
	assert.Equal(t, int64(2000), d.TotalAmount)
}

func TestTicketCountBounds(t *testing.T) {
	d := NewDraft("d1", time.Now())
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))

	assert.ErrorIs(t, d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(0)}), ErrTicketBounds)
	assert.ErrorIs(t, d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(11)}), ErrTicketBounds)
	// A rejected merge must not advance the wizard.
	assert.Equal(t, StepTickets, d.Step)
}

func TestTicketLimitConfigurablePerDraft(t *testing.T) {
	d := NewDraft("d1", time.Now())
	d.MaxTickets = 5
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))

	assert.ErrorIs(t, d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(6)}), ErrTicketBounds)
	require.NoError(t, d.ApplyStep(StepTickets, StepData{NumberOfTickets: ptr(5)}))
	assert.Equal(t, 5, d.NumberOfTickets)
}

func TestChangingTempleOrDateClearsSlot(t *testing.T) {
	d := NewDraft("d1", time.Now())
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))
	require.Equal(t, "08:00", d.TimeSlot)

	// Stepping back to the date step and picking a new date invalidates the
	// previously chosen slot.
	d.Back()
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-02")}))
	assert.Empty(t, d.TimeSlot)

	// Same for re-selecting a different temple.
	other := dwarkadhish()
	other.ID = 2
	d = NewDraft("d2", time.Now())
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))
	d.Back()
	d.Back()
	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: other}))
	assert.Empty(t, d.TimeSlot)
}

func TestCompleteRequiresEveryStep(t *testing.T) {
	d := NewDraft("d1", time.Now())
	assert.False(t, d.Complete())

	require.NoError(t, d.ApplyStep(StepTemple, StepData{Temple: dwarkadhish()}))
	require.NoError(t, d.ApplyStep(StepSlot, StepData{VisitDate: ptr("2026-09-01"), TimeSlot: ptr("08:00")}))
	require.NoError(t, d.ApplyStep(StepTickets, StepData{TicketType: ptr(domain.TicketTypeVIP), NumberOfTickets: ptr(2)}))
	assert.False(t, d.Complete())

	details := &domain.DevoteeDetails{
		Primary:    domain.Devotee{Name: "Asha Patel", Phone: "9876543210", Email: "asha@example.com", Age: 34},
		Additional: []domain.Companion{{Name: "Ravi Patel", Age: 36}},
	}
	require.NoError(t, d.ApplyStep(StepDevotees, StepData{Devotees: details}))
	require.NoError(t, d.ApplyStep(StepPayment, StepData{PaymentMethod: ptr(domain.PaymentMethodUPI)}))

	assert.Equal(t, StepConfirmation, d.Step)
	assert.True(t, d.Complete())
	assert.Equal(t, int64(400), d.TotalAmount)
}
