package wizard

import (
	"testing"

	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/stretchr/testify/assert"
)

func validDetails(extra int) domain.DevoteeDetails {
	details := domain.DevoteeDetails{
		Primary: domain.Devotee{
			Name:  "Asha Patel",
			Phone: "98765-43210",
			Email: "asha@example.com",
			Age:   34,
		},
	}
	for i := 0; i < extra; i++ {
		details.Additional = append(details.Additional, domain.Companion{Name: "Companion", Age: 40})
	}
	return details
}

func TestValidateDevoteesAcceptsValidForm(t *testing.T) {
	errs := ValidateDevotees(validDetails(2), 3)
	assert.Empty(t, errs)
}

func TestValidateDevoteesPrimaryFields(t *testing.T) {
	details := validDetails(0)
	details.Primary.Name = "  "
	details.Primary.Phone = "12345"
	details.Primary.Email = "not-an-email"
	details.Primary.Age = 0

	errs := ValidateDevotees(details, 1)
	assert.Len(t, errs, 4)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "age")
}

func TestValidateDevoteesPhoneStripsFormatting(t *testing.T) {
	details := validDetails(0)
	details.Primary.Phone = "+91 (98765) 432-10"
	// 12 digits after stripping: rejected.
	errs := ValidateDevotees(details, 1)
	assert.Contains(t, errs, "phone")

	details.Primary.Phone = "(98765) 432-10"
	errs = ValidateDevotees(details, 1)
	assert.NotContains(t, errs, "phone")
}

func TestValidateDevoteesCompanionCountMustMatchTickets(t *testing.T) {
	errs := ValidateDevotees(validDetails(1), 3)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "additionalDevotees")
}

func TestValidateDevoteesMissingCompanionAge(t *testing.T) {
	details := validDetails(2)
	details.Additional[1].Age = 0

	// Exactly one error, for exactly that field.
	errs := ValidateDevotees(details, 3)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "additionalDevotees[1].age")

	// Correcting the field makes the form pass.
	details.Additional[1].Age = 12
	assert.Empty(t, ValidateDevotees(details, 3))
}
