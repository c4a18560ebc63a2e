package client

import (
	"context"
	"event-ticket/model"
	"net/http"
)

type Profiles struct {
	Client *Client
}

func (p Profiles) Get(ctx context.Context) (model.ProfileResponse, error) {
	var profile model.ProfileResponse
	if err := p.Client.do(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return model.ProfileResponse{}, err
	}
	return profile, nil
}

func (p Profiles) Update(ctx context.Context, req model.UpdateProfileRequest) (model.ProfileResponse, error) {
	var profile model.ProfileResponse
	err := p.Client.do(ctx, http.MethodPut, "/api/profile", req, &profile)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.Status == http.StatusBadRequest {
			return model.ProfileResponse{}, apiErr.validation()
		}
		return model.ProfileResponse{}, err
	}
	return profile, nil
}

// Academic fills the supplied fields from the stored profile and refuses, before any registration
// is sent, when institution, department or year is still missing.
func (p Profiles) Academic(ctx context.Context, supplied *model.AcademicFields) (model.AcademicFields, error) {
	profile, err := p.Get(ctx)
	if err != nil {
		return model.AcademicFields{}, err
	}

	resolved := profile.AcademicFields.Merge(supplied)
	if missing := resolved.Missing(); len(missing) > 0 {
		return model.AcademicFields{}, &ValidationError{Message: "Validation failed", Fields: missing}
	}

	return resolved, nil
}

// Option adjusts a registration or payment order request.
type Option func(*requestOptions)

type requestOptions struct {
	academic *model.AcademicFields
}

// WithAcademicFields sends academic fields with the request. Blank fields fall back to the stored profile.
func WithAcademicFields(fields model.AcademicFields) Option {
	return func(o *requestOptions) {
		o.academic = &fields
	}
}

func applyOptions(opts []Option) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
