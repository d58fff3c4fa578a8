package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coexist-app/coexist-backend/internal/matching"
)

func TestNotifyMatchEmailsBothSides(t *testing.T) {
	provider := NewMockEmailProvider()
	svc := NewService(provider, "https://app.coexist.example")

	a := &matching.Profile{ID: "alice", DisplayName: "Alice", Email: "alice@example.com"}
	b := &matching.Profile{ID: "bob", DisplayName: "Bob", Email: "bob@example.com"}

	svc.NotifyMatch(context.Background(), a, b)

	require.Len(t, provider.Sent, 2)
	assert.Equal(t, "alice@example.com", provider.Sent[0].To)
	assert.Contains(t, provider.Sent[0].Subject, "Bob")
	assert.Equal(t, "bob@example.com", provider.Sent[1].To)
	assert.Contains(t, provider.Sent[1].Subject, "Alice")
}

func TestNotifyMatchSkipsMissingEmail(t *testing.T) {
	provider := NewMockEmailProvider()
	svc := NewService(provider, "https://app.coexist.example")

	a := &matching.Profile{ID: "alice", DisplayName: "Alice"}
	b := &matching.Profile{ID: "bob", DisplayName: "Bob", Email: "bob@example.com"}

	svc.NotifyMatch(context.Background(), a, b)

	require.Len(t, provider.Sent, 1)
	assert.Equal(t, "bob@example.com", provider.Sent[0].To)
}
