package valueobjects

type SubscriptionStatus string

const (
	StatusTrialing  SubscriptionStatus = "trialing"
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// CanUseService reports whether the status grants access to paid features.
// Access is ultimately bounded by the current period end, not by status alone:
// a cancelled subscription keeps access until its period lapses.
func (s SubscriptionStatus) CanUseService() bool {
	return s == StatusActive || s == StatusTrialing
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// CanTransitionTo validates the subscription state machine. Transitions not
// listed here are rejected by the aggregate with an invalid-transition error.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		StatusTrialing:  {StatusTrialing, StatusActive, StatusCancelled, StatusExpired},
		StatusActive:    {StatusActive, StatusCancelled, StatusExpired},
		StatusCancelled: {},
		StatusExpired:   {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusTrialing:  true,
	StatusActive:    true,
	StatusCancelled: true,
	StatusExpired:   true,
}
