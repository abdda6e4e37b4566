package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypePaymentProcess = "payment:process"
	TypePaymentConfirm = "payment:confirm"
	TypeExpirySweep    = "booking:expire"
)

// PaymentPayload identifies the booking a payment task acts on.
type PaymentPayload struct {
	Token string `json:"token"`
}

type ExpirySweepPayload struct {
	OlderThanMinutes int `json:"older_than_minutes"`
}

func NewPaymentProcessTask(token string) (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentPayload{Token: token})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentProcess, payload), nil
}

func NewPaymentConfirmTask(token string) (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentPayload{Token: token})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentConfirm, payload), nil
}

func NewExpirySweepTask(olderThanMinutes int) (*asynq.Task, error) {
	payload, err := json.Marshal(ExpirySweepPayload{OlderThanMinutes: olderThanMinutes})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExpirySweep, payload), nil
}
