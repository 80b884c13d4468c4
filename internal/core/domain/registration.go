package domain

// Form field names accepted by the intake endpoint.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldCountry   = "country"
	FieldGender    = "gender"
	FieldDOB       = "dob"
	FieldMessage   = "message"
	FieldTerms     = "terms"
)

const SuccessMessage = "Registration submitted successfully!"

// RawForm is the untrusted field map built by the transport layer. Presence of
// a key is significant: an empty "terms" value still counts as accepted.
type RawForm map[string]string

// Registration is a sanitized submission. All string fields are HTML-escaped.
type Registration struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	Country       string
	Gender        string
	DOB           string
	Message       string
	TermsAccepted bool
}

// NewRegistration sanitizes every text field of form. Absent fields become "".
func NewRegistration(form RawForm) Registration {
	_, terms := form[FieldTerms]
	return Registration{
		FirstName:     Sanitize(form[FieldFirstName]),
		LastName:      Sanitize(form[FieldLastName]),
		Email:         Sanitize(form[FieldEmail]),
		Phone:         Sanitize(form[FieldPhone]),
		Address:       Sanitize(form[FieldAddress]),
		City:          Sanitize(form[FieldCity]),
		State:         Sanitize(form[FieldState]),
		Country:       Sanitize(form[FieldCountry]),
		Gender:        Sanitize(form[FieldGender]),
		DOB:           Sanitize(form[FieldDOB]),
		Message:       Sanitize(form[FieldMessage]),
		TermsAccepted: terms,
	}
}

// RequiredFields returns the fields that must be non-empty, keyed by form name.
func (r Registration) RequiredFields() map[string]string {
	return map[string]string{
		FieldFirstName: r.FirstName,
		FieldLastName:  r.LastName,
		FieldEmail:     r.Email,
		FieldPhone:     r.Phone,
		FieldAddress:   r.Address,
		FieldCity:      r.City,
		FieldState:     r.State,
		FieldCountry:   r.Country,
		FieldGender:    r.Gender,
		FieldDOB:       r.DOB,
	}
}

func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Result is the outcome returned to the submitter.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Succeeded() Result {
	return Result{Success: true, Message: SuccessMessage}
}

// Failed renders err in the public "Error: <reason>" form.
func Failed(err error) Result {
	return Result{Success: false, Message: "Error: " + err.Error()}
}
