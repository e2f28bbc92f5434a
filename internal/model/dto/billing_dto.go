package dto

// EntitlementResult is fully recomputed on every evaluation.
type EntitlementResult struct {
	IsActive            bool   `json:"is_active"`
	IsOnTrial           bool   `json:"is_on_trial"`
	TrialDaysLeft       int    `json:"trial_days_left"`
	IsCourtesy          bool   `json:"is_courtesy"`
	HasPaidSubscription bool   `json:"has_paid_subscription"`
	PlanLabel           string `json:"plan_label"`
}

type PlanInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Tier     string  `json:"tier"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type CheckoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}
