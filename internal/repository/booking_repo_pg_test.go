package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Postgres raises 0A000 for a locking clause combined with an aggregate, so
// the checkout capacity check must lock the temple row and keep the SUM
// unlocked. Pinned here because no live database runs in unit tests.
func TestCapacityCheckLockingScheme(t *testing.T) {
	assert.Contains(t, lockTempleSQL, "FOR UPDATE")
	assert.NotContains(t, strings.ToUpper(lockTempleSQL), "SUM(")

	assert.Contains(t, slotTicketsSQL, "SUM(number_of_tickets)")
	assert.NotContains(t, slotTicketsSQL, "FOR UPDATE")
}
