package leads

import (
	"fmt"
	"regexp"

	stderrors "madsag-engine/internal/common/errors"

	"madsag-engine/internal/catalog"
)

// ValidationError carries one client-side field failure.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// E.164 format: optional +, must start with 1-9, then 6-14 more digits.
	// This prevents short numbers like "123" from passing.
	phoneRegex = regexp.MustCompile(`^[\+]?[1-9][\d]{6,14}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s\-\']{2,100}$`)
	urlRegex   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// Validate checks a normalized record before it is allowed anywhere near
// the network. A non-empty result means the submission stops here.
func (r *Record) Validate() []ValidationError {
	var errs []ValidationError

	if r.FullName == "" {
		errs = append(errs, ValidationError{Field: "FullName", Code: "MISSING_REQUIRED", Message: "Full name is required"})
	} else if !nameRegex.MatchString(r.FullName) {
		errs = append(errs, ValidationError{Field: "FullName", Code: "INVALID_FORMAT", Message: "Name must be 2-100 characters, letters, spaces, hyphens, or apostrophes"})
	}

	if r.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Code: "MISSING_REQUIRED", Message: "Email is required"})
	} else if !emailRegex.MatchString(r.Email) {
		errs = append(errs, ValidationError{Field: "email", Code: "INVALID_FORMAT", Message: "Invalid email format"})
	}

	if r.Phone == "" {
		errs = append(errs, ValidationError{Field: "phone", Code: "MISSING_REQUIRED", Message: "Phone is required"})
	} else if !phoneRegex.MatchString(r.Phone) {
		errs = append(errs, ValidationError{Field: "phone", Code: "INVALID_FORMAT", Message: "Invalid phone format (E.164 recommended)"})
	}

	if r.Subject == "" {
		errs = append(errs, ValidationError{Field: "subject", Code: "MISSING_REQUIRED", Message: "Subject is required"})
	} else if !catalog.ValidSubjectBase(SubjectBase(r.Subject)) {
		errs = append(errs, ValidationError{Field: "subject", Code: "INVALID_ENUM_VALUE", Message: "Subject must name a listed service or General"})
	}

	if len(r.Description) < MinDescriptionLength {
		errs = append(errs, ValidationError{
			Field:   "description",
			Code:    "MIN_LENGTH_VIOLATION",
			Message: fmt.Sprintf("Message must be at least %d characters.", MinDescriptionLength),
		})
	}

	if r.ProjectType != "" {
		if !knownProjectTypes[r.ProjectType] {
			errs = append(errs, ValidationError{Field: "projectType", Code: "INVALID_ENUM_VALUE", Message: "Unknown project type"})
		} else if extra, ok := extraFieldByProjectType[r.ProjectType]; ok {
			errs = append(errs, r.requireExtraField(extra)...)
		}
	}

	if r.URL != "" && !urlRegex.MatchString(r.URL) {
		errs = append(errs, ValidationError{Field: "url", Code: "INVALID_FORMAT", Message: "Website URL must start with http:// or https://"})
	}

	return errs
}

func (r *Record) requireExtraField(field string) []ValidationError {
	var value string
	switch field {
	case "url":
		value = r.URL
	case "budget":
		value = r.Budget
	default:
		return nil
	}
	if value != "" {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Code:    "MISSING_REQUIRED",
		Message: fmt.Sprintf("%s is required for this project type", field),
	}}
}

// AsFieldErrors converts client-side failures into the shared error shape.
func AsFieldErrors(errs []ValidationError) []stderrors.FieldError {
	out := make([]stderrors.FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, stderrors.FieldError{Path: e.Field, Message: e.Message})
	}
	return out
}
