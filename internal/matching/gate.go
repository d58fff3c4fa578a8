package matching

// DenyReason distinguishes the two normal negative gate outcomes so the UI
// can offer an upgrade path for one and a "wait for a match" for the other.
type DenyReason string

const (
	DenyReasonNotMatched    DenyReason = "not_matched"
	DenyReasonFreeTierLimit DenyReason = "free_tier_limit"
)

// GateDecision is the messaging gate verdict. Reason is set only on denial.
type GateDecision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

// SendRequest is the gate input for one sender -> recipient consideration.
type SendRequest struct {
	Sender    *Profile
	Recipient *Profile
	Matched   bool
}

// Gate decides whether a user may message another user. The free-tier limit
// is the number of non-match direct messages a free sender gets before
// upgrade (historically 1).
type Gate struct {
	freeLimit int
}

func NewGate(freeDirectMessageLimit int) *Gate {
	return &Gate{freeLimit: freeDirectMessageLimit}
}

// gateRule is one row of the ordered decision table; the first rule whose
// predicate fires decides the outcome. quota-marked rows only apply to
// actual send attempts, not to visibility checks.
type gateRule struct {
	name  string
	quota bool
	when  func(g *Gate, r SendRequest) bool
	out   GateDecision
}

var sendRules = []gateRule{
	{
		name:  "free tier quota exhausted",
		quota: true,
		when: func(g *Gate, r SendRequest) bool {
			return !r.Matched &&
				r.Sender.SubscriptionTier == TierFree &&
				r.Sender.DirectMessagesSent >= g.freeLimit
		},
		out: GateDecision{Allowed: false, Reason: DenyReasonFreeTierLimit},
	},
	{
		name: "matched pair",
		when: func(g *Gate, r SendRequest) bool { return r.Matched },
		out:  GateDecision{Allowed: true},
	},
	{
		name: "recipient open to non-matches",
		when: func(g *Gate, r SendRequest) bool { return r.Recipient.OpenToNonMatches },
		out:  GateDecision{Allowed: true},
	},
	{
		// The sender's own opt-in also opens the gate. Asymmetric, but it is
		// the behavior users have; flagged for product review, preserved
		// until product decides otherwise.
		name: "sender open to non-matches",
		when: func(g *Gate, r SendRequest) bool { return r.Sender.OpenToNonMatches },
		out:  GateDecision{Allowed: true},
	},
}

// CanMessage is the visibility rule: may this pair converse at all. It skips
// quota rows, so a quota-exhausted free user still sees open conversations.
func (g *Gate) CanMessage(r SendRequest) GateDecision {
	return g.decide(r, false)
}

// AuthorizeSend gates an actual send attempt. The quota row runs first and
// is stricter than the visibility rule.
func (g *Gate) AuthorizeSend(r SendRequest) GateDecision {
	return g.decide(r, true)
}

func (g *Gate) decide(r SendRequest, includeQuota bool) GateDecision {
	for _, rule := range sendRules {
		if rule.quota && !includeQuota {
			continue
		}
		if rule.when(g, r) {
			return rule.out
		}
	}
	return GateDecision{Allowed: false, Reason: DenyReasonNotMatched}
}

// CountsAgainstQuota reports whether an accepted send must increment the
// sender's direct-message counter: only non-match sends by free-tier
// senders. Match-path and premium sends never touch the counter.
func (g *Gate) CountsAgainstQuota(r SendRequest) bool {
	return !r.Matched && r.Sender.SubscriptionTier == TierFree
}

// RemainingDirectMessages reports the allowance shown to the sender before
// composing. A negative return means unlimited.
func (g *Gate) RemainingDirectMessages(sender *Profile, matched bool) int {
	if sender.SubscriptionTier != TierFree || matched {
		return -1
	}
	remaining := g.freeLimit - sender.DirectMessagesSent
	if remaining < 0 {
		return 0
	}
	return remaining
}
