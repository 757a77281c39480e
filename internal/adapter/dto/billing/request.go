package billing

// CheckoutRequest starts a subscription checkout for a plan
type CheckoutRequest struct {
	PlanType string `json:"plan_type" validate:"required,oneof=starter business"`
}

// CancelRequest cancels every live subscription for the billing account
type CancelRequest struct {
	// Email overrides the token email, for managers cancelling on
	// behalf of an account they administer.
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// UsageRequest records metered usage manually
type UsageRequest struct {
	// Quantity defaults to 1 when omitted
	Quantity int64 `json:"quantity,omitempty" validate:"omitempty,min=1,max=1000"`
}
