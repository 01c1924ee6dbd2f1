package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversation_Advance(t *testing.T) {
	c := NewConversation(1, 10, AwaitingReminderText{})
	require.Equal(t, "awaiting_text", c.Step.Name())
	require.Equal(t, int64(1), c.UserID)
	require.Equal(t, int64(10), c.ChatID)

	c.Advance(AwaitingReminderDateTime{Text: "Купить молоко"})
	step, ok := c.Step.(AwaitingReminderDateTime)
	require.True(t, ok)
	require.Equal(t, "Купить молоко", step.Text)
}
