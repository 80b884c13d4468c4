package domain

import "errors"

// Kind is the machine-readable class of a rejected submission.
type Kind string

const (
	KindInvalidMethod        Kind = "invalid_method"
	KindMissingRequiredField Kind = "missing_required_field"
	KindInvalidEmail         Kind = "invalid_email"
	KindInvalidPhone         Kind = "invalid_phone"
	KindInvalidDateOfBirth   Kind = "invalid_date_of_birth"
	KindUnderage             Kind = "underage"
	KindInvalidNameFormat    Kind = "invalid_name_format"
	KindInvalidCityFormat    Kind = "invalid_city_format"
)

var (
	ErrInvalidMethod        = errors.New("invalid request method")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrInvalidPhone         = errors.New("invalid phone")
	ErrInvalidDateOfBirth   = errors.New("invalid date of birth")
	ErrUnderage             = errors.New("underage")
	ErrInvalidNameFormat    = errors.New("invalid name format")
	ErrInvalidCityFormat    = errors.New("invalid city format")
)

var kindSentinels = map[Kind]error{
	KindInvalidMethod:        ErrInvalidMethod,
	KindMissingRequiredField: ErrMissingRequiredField,
	KindInvalidEmail:         ErrInvalidEmail,
	KindInvalidPhone:         ErrInvalidPhone,
	KindInvalidDateOfBirth:   ErrInvalidDateOfBirth,
	KindUnderage:             ErrUnderage,
	KindInvalidNameFormat:    ErrInvalidNameFormat,
	KindInvalidCityFormat:    ErrInvalidCityFormat,
}

// ValidationError rejects a submission. Reason is the human-readable text shown
// to the submitter; Field names the offending field where there is exactly one.
// Details carries validator output for logs and is never shown to the submitter.
type ValidationError struct {
	Kind    Kind
	Field   string
	Reason  string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is lets callers match on the per-kind sentinels with errors.Is.
func (e *ValidationError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

func NewValidationError(kind Kind, field, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}

// KindOf returns the kind of err, or "" if err is not a ValidationError.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
