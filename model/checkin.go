package model

type CheckInRequest struct {
	Token string `json:"token" validate:"required,max=64"`
}

type CheckInResponse struct {
	Ok           bool          `json:"ok,omitempty"`
	Registration *Registration `json:"registration,omitempty"`
	Error        string        `json:"error,omitempty"`
}
