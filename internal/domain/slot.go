package domain

type CrowdLevel string

const (
	CrowdLow    CrowdLevel = "low"
	CrowdMedium CrowdLevel = "medium"
	CrowdHigh   CrowdLevel = "high"
)

// WaitMinutes is the fixed wait-time estimate for a crowd tier.
func (c CrowdLevel) WaitMinutes() int {
	switch c {
	case CrowdHigh:
		return 45
	case CrowdMedium:
		return 25
	default:
		return 10
	}
}

// Slot is a bookable darshan window. Slots are derived per request from the
// temple's operating hours and never persisted.
type Slot struct {
	Time        string     `json:"time"` // "HH:00"
	Available   int        `json:"available"`
	Total       int        `json:"total"`
	CrowdLevel  CrowdLevel `json:"crowdLevel"`
	WaitMinutes int        `json:"waitTime"`
}

func (s *Slot) IsFull() bool {
	return s.Available <= 0
}
