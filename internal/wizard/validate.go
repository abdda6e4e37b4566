package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mandirtech/edarshan/internal/domain"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateDevotees checks the devotee details form against the ticket count.
// It returns a field->message map; an empty map means the step may complete.
func ValidateDevotees(details domain.DevoteeDetails, numberOfTickets int) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(details.Primary.Name) == "" {
		errs["name"] = "name is required"
	}
	if digits := nonDigitRe.ReplaceAllString(details.Primary.Phone, ""); len(digits) != 10 {
		errs["phone"] = "phone must have exactly 10 digits"
	}
	if !emailRe.MatchString(details.Primary.Email) {
		errs["email"] = "invalid email address"
	}
	if details.Primary.Age <= 0 {
		errs["age"] = "age must be a positive number"
	}

	// One companion entry per ticket beyond the first.
	want := numberOfTickets - 1
	if len(details.Additional) != want {
		errs["additionalDevotees"] = fmt.Sprintf("expected %d additional devotees, got %d", want, len(details.Additional))
		return errs
	}
	for i, c := range details.Additional {
		if strings.TrimSpace(c.Name) == "" {
			errs[fmt.Sprintf("additionalDevotees[%d].name", i)] = "name is required"
		}
		if c.Age <= 0 {
			errs[fmt.Sprintf("additionalDevotees[%d].age", i)] = "age must be a positive number"
		}
	}
	return errs
}
