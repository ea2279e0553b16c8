package notify

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcomeEmail   = "notify:welcome"
	TaskLoginLinkEmail = "notify:login_link"
)

type WelcomeEmailPayload struct {
	LeadID       string `json:"lead_id"`
	CustomerID   string `json:"customer_id"`
	ContactEmail string `json:"contact_email"`
	BusinessName string `json:"business_name"`
}

func NewWelcomeEmailTask(p WelcomeEmailPayload) *asynq.Task {
	payload, _ := json.Marshal(p)
	return asynq.NewTask(TaskWelcomeEmail, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Queue("default"))
}

type LoginLinkPayload struct {
	CustomerID   string `json:"customer_id"`
	ContactEmail string `json:"contact_email"`
	Token        string `json:"token"`
}

func NewLoginLinkTask(p LoginLinkPayload) *asynq.Task {
	payload, _ := json.Marshal(p)
	return asynq.NewTask(TaskLoginLinkEmail, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Queue("critical"))
}
