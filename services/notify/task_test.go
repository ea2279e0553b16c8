package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWelcomeEmailTask(t *testing.T) {
	payload := WelcomeEmailPayload{
		LeadID:       "lead-1",
		CustomerID:   "cus_1",
		ContactEmail: "owner@example.com",
		BusinessName: "Trattoria Uno",
	}

	task := NewWelcomeEmailTask(payload)
	require.Equal(t, TaskWelcomeEmail, task.Type())

	var decoded WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, payload, decoded)
}

func TestNewLoginLinkTask(t *testing.T) {
	payload := LoginLinkPayload{
		CustomerID:   "cus_1",
		ContactEmail: "owner@example.com",
		Token:        "secret-token",
	}

	task := NewLoginLinkTask(payload)
	require.Equal(t, TaskLoginLinkEmail, task.Type())

	var decoded LoginLinkPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, payload, decoded)
}
