package model

type CreatePaymentOrderRequest struct {
	EventId int64    `json:"eventId" validate:"required"`
	Roster  []string `json:"roster,omitempty" validate:"omitempty,max=50,dive,max=100"`
	// Amount is accepted for older clients and never trusted.
	Amount         *int64          `json:"amount,omitempty"`
	AcademicFields *AcademicFields `json:"academicFields,omitempty"`
}

type CreatePaymentOrderResponse struct {
	OrderId    string `json:"orderId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	GatewayKey string `json:"gatewayKey"`
}

type VerifyPaymentRequest struct {
	OrderId   string `json:"orderId" validate:"required,max=64"`
	PaymentId string `json:"paymentId" validate:"required,max=64"`
	Signature string `json:"signature" validate:"required,hexadecimal,max=128"`
}

type VerifyPaymentResponse struct {
	Success      bool          `json:"success"`
	Registration *Registration `json:"registration,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type CancelPaymentRequest struct {
	OrderId string `json:"orderId" validate:"required,max=64"`
}

type CancelPaymentResponse struct {
	OrderId      string `json:"orderId"`
	PaymentState string `json:"paymentState"`
}

type ExpirePaymentResponse struct {
	Expired int `json:"expired"`
}
