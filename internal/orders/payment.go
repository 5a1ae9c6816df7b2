package orders

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCreditCard     PaymentMethod = "credit_card"
)

// ParsePaymentMethod accepts the canonical method names plus "cod", the legacy
// form value still sent by older clients.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch s {
	case string(PaymentCashOnDelivery), "cod":
		return PaymentCashOnDelivery, nil
	case string(PaymentCreditCard):
		return PaymentCreditCard, nil
	default:
		return "", ErrUnsupportedPaymentMethod
	}
}
