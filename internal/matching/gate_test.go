package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func freeSender(sent int) *Profile {
	return &Profile{ID: "sender", SubscriptionTier: TierFree, DirectMessagesSent: sent}
}

func TestGateMatchedAlwaysAllowed(t *testing.T) {
	gate := NewGate(1)

	// Counter well past the limit: matches have unlimited messaging.
	d := gate.AuthorizeSend(SendRequest{
		Sender:    freeSender(5),
		Recipient: &Profile{ID: "recipient"},
		Matched:   true,
	})

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
}

func TestGateRecipientOptInAllows(t *testing.T) {
	gate := NewGate(1)

	d := gate.AuthorizeSend(SendRequest{
		Sender:    freeSender(0),
		Recipient: &Profile{ID: "recipient", OpenToNonMatches: true},
	})

	assert.True(t, d.Allowed)
}

func TestGateSenderOptInAllows(t *testing.T) {
	// The sender's own flag opens the gate too; preserved asymmetry.
	gate := NewGate(1)

	sender := freeSender(0)
	sender.OpenToNonMatches = true
	d := gate.AuthorizeSend(SendRequest{
		Sender:    sender,
		Recipient: &Profile{ID: "recipient"},
	})

	assert.True(t, d.Allowed)
}

func TestGateDefaultDeny(t *testing.T) {
	gate := NewGate(1)

	d := gate.AuthorizeSend(SendRequest{
		Sender:    &Profile{ID: "sender", SubscriptionTier: TierPremium},
		Recipient: &Profile{ID: "recipient"},
	})

	assert.False(t, d.Allowed)
	assert.Equal(t, DenyReasonNotMatched, d.Reason)
}

func TestGateQuotaAppliesBeforeVisibility(t *testing.T) {
	gate := NewGate(1)

	// Recipient opted in, but the sender exhausted the free allowance.
	d := gate.AuthorizeSend(SendRequest{
		Sender:    freeSender(1),
		Recipient: &Profile{ID: "recipient", OpenToNonMatches: true},
	})

	assert.False(t, d.Allowed)
	assert.Equal(t, DenyReasonFreeTierLimit, d.Reason)
}

func TestGateQuotaIgnoredForPremium(t *testing.T) {
	gate := NewGate(1)

	d := gate.AuthorizeSend(SendRequest{
		Sender:    &Profile{ID: "sender", SubscriptionTier: TierPremium, DirectMessagesSent: 40},
		Recipient: &Profile{ID: "recipient", OpenToNonMatches: true},
	})

	assert.True(t, d.Allowed)
}

func TestGateCanMessageSkipsQuota(t *testing.T) {
	gate := NewGate(1)

	// Visibility is not rationed: a quota-exhausted sender still sees the
	// conversation as open.
	d := gate.CanMessage(SendRequest{
		Sender:    freeSender(1),
		Recipient: &Profile{ID: "recipient", OpenToNonMatches: true},
	})

	assert.True(t, d.Allowed)
}

func TestGateCountsAgainstQuota(t *testing.T) {
	gate := NewGate(1)

	assert.True(t, gate.CountsAgainstQuota(SendRequest{Sender: freeSender(0)}))
	assert.False(t, gate.CountsAgainstQuota(SendRequest{Sender: freeSender(0), Matched: true}))
	assert.False(t, gate.CountsAgainstQuota(SendRequest{
		Sender: &Profile{ID: "sender", SubscriptionTier: TierPremium},
	}))
}

func TestGateRemainingDirectMessages(t *testing.T) {
	gate := NewGate(1)

	assert.Equal(t, 1, gate.RemainingDirectMessages(freeSender(0), false))
	assert.Equal(t, 0, gate.RemainingDirectMessages(freeSender(1), false))
	assert.Equal(t, 0, gate.RemainingDirectMessages(freeSender(3), false))

	// Unlimited for matches and paid tiers.
	assert.Equal(t, -1, gate.RemainingDirectMessages(freeSender(1), true))
	assert.Equal(t, -1, gate.RemainingDirectMessages(
		&Profile{ID: "sender", SubscriptionTier: TierPremium}, false))
}
