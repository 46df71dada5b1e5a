package subscription

import "time"

type Status string

const (
	StatusNotStarted        Status = "not_started"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusTrialing          Status = "trialing"
	StatusActive            Status = "active"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

// Active reports whether the status unlocks full reports.
func (s Status) Active() bool {
	return s == StatusActive || s == StatusTrialing
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusIncomplete, StatusIncompleteExpired, StatusTrialing,
		StatusActive, StatusPastDue, StatusCanceled, StatusUnpaid, StatusPaused:
		return true
	}
	return false
}

// Subscription mirrors the billing provider's view of a user.
type Subscription struct {
	UserID             string     `json:"user_id"`
	CustomerID         string     `json:"customer_id,omitempty"`
	SubscriptionID     string     `json:"subscription_id,omitempty"`
	PriceID            string     `json:"price_id,omitempty"`
	Status             Status     `json:"subscription_status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	PaymentMethodBrand string     `json:"payment_method_brand,omitempty"`
	PaymentMethodLast4 string     `json:"payment_method_last4,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
