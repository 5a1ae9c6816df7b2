package orders

type Status string

const (
	// StatusCart is the open, mutable order: the user's live shopping cart.
	StatusCart                   Status = "cart"
	StatusPending                Status = "pending"
	StatusConfirmed              Status = "confirmed"
	StatusAwaitingPaymentCapture Status = "awaiting_payment_capture"
)

var validNext = map[Status]map[Status]bool{
	StatusCart:                   {StatusPending: true},
	StatusPending:                {StatusConfirmed: true, StatusAwaitingPaymentCapture: true},
	StatusAwaitingPaymentCapture: {StatusConfirmed: true},
	StatusConfirmed:              {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
