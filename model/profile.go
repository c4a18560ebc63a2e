package model

import "strings"

type ProfileResponse struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AcademicFields
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
	AcademicFields
}

type AcademicFields struct {
	Institution string `json:"institution,omitempty" validate:"omitempty,max=150"`
	Department  string `json:"department,omitempty" validate:"omitempty,max=150"`
	Year        string `json:"year,omitempty" validate:"omitempty,max=20"`
}

// Merge returns a copy where non-blank supplied fields replace the stored ones.
func (a AcademicFields) Merge(supplied *AcademicFields) AcademicFields {
	resolved := a
	if supplied == nil {
		return resolved
	}

	if v := strings.TrimSpace(supplied.Institution); v != "" {
		resolved.Institution = v
	}
	if v := strings.TrimSpace(supplied.Department); v != "" {
		resolved.Department = v
	}
	if v := strings.TrimSpace(supplied.Year); v != "" {
		resolved.Year = v
	}
	return resolved
}

// Missing maps each empty required field to "required". Nil when complete.
func (a AcademicFields) Missing() map[string]string {
	var missing map[string]string
	add := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			return
		}
		if missing == nil {
			missing = make(map[string]string)
		}
		missing[field] = "required"
	}

	add("institution", a.Institution)
	add("department", a.Department)
	add("year", a.Year)
	return missing
}
