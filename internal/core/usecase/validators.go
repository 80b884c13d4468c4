package usecase

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jinzhu/now"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

const (
	reasonInvalidMethod   = "Invalid request method"
	reasonMissingRequired = "All required fields must be filled"
	reasonInvalidEmail    = "Invalid email format"
	reasonInvalidPhone    = "Invalid phone number format"
	reasonInvalidDOB      = "Invalid date of birth"
	reasonUnderage        = "You must be at least 18 years old"
	reasonInvalidFirst    = "Invalid first name format"
	reasonInvalidLast     = "Invalid last name format"
	reasonInvalidCity     = "Invalid city format"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s'-]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s()+-]{10,}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// dobParser accepts the date spellings browsers and people commonly submit.
var dobParser = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats: []string{
		"2006-1-2",
		"2006-1-2 15:04:05",
		"2006-1-2 15:04",
		"2006/1/2",
		"1/2/2006",
		"2-1-2006",
		"2.1.2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
		time.RFC3339,
	},
}

// submission is the state threaded through the checks of one request.
type submission struct {
	reg   domain.Registration
	birth time.Time
}

type check func(sub *submission) error

func checkRequired(sub *submission) error {
	doc := make(map[string]any, 11)
	for field, value := range sub.reg.RequiredFields() {
		doc[field] = value
	}
	doc[domain.FieldTerms] = sub.reg.TermsAccepted

	if err := registrationSchema.Validate(doc); err != nil {
		verr := domain.NewValidationError(domain.KindMissingRequiredField, "", reasonMissingRequired)
		verr.Details = schemaViolations(err)
		return verr
	}
	return nil
}

func checkEmail(sub *submission) error {
	email := sub.reg.Email
	if !isASCII(email) || strings.ContainsFunc(email, unicode.IsSpace) || !hasDottedDomain(email) {
		return domain.NewValidationError(domain.KindInvalidEmail, domain.FieldEmail, reasonInvalidEmail)
	}
	if err := emailSchema.Validate(email); err != nil {
		verr := domain.NewValidationError(domain.KindInvalidEmail, domain.FieldEmail, reasonInvalidEmail)
		verr.Details = schemaViolations(err)
		return verr
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// hasDottedDomain reports whether the part after the last "@" has at least two
// non-empty dot-separated labels.
func hasDottedDomain(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return false
	}
	labels := strings.Split(email[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

func checkPhone(sub *submission) error {
	if !phonePattern.MatchString(phoneStrip.Replace(sub.reg.Phone)) {
		return domain.NewValidationError(domain.KindInvalidPhone, domain.FieldPhone, reasonInvalidPhone)
	}
	return nil
}

func checkDateOfBirth(sub *submission) error {
	birth, err := dobParser.Parse(sub.reg.DOB)
	if err != nil {
		verr := domain.NewValidationError(domain.KindInvalidDateOfBirth, domain.FieldDOB, reasonInvalidDOB)
		verr.Details = []string{err.Error()}
		return verr
	}
	sub.birth = birth
	return nil
}

// ageCheck compares the birth date against today's date in the clock's own
// location, the same date the audit timestamp carries.
func ageCheck(clock func() time.Time) check {
	return func(sub *submission) error {
		if domain.CompletedYears(sub.birth, clock()) < domain.AdultAge {
			return domain.NewValidationError(domain.KindUnderage, domain.FieldDOB, reasonUnderage)
		}
		return nil
	}
}

// checkNames matches the decoded text, so an apostrophe escaped by sanitization
// is still accepted.
func checkNames(sub *submission) error {
	names := []struct {
		field  string
		value  string
		kind   domain.Kind
		reason string
	}{
		{field: domain.FieldFirstName, value: sub.reg.FirstName, kind: domain.KindInvalidNameFormat, reason: reasonInvalidFirst},
		{field: domain.FieldLastName, value: sub.reg.LastName, kind: domain.KindInvalidNameFormat, reason: reasonInvalidLast},
		{field: domain.FieldCity, value: sub.reg.City, kind: domain.KindInvalidCityFormat, reason: reasonInvalidCity},
	}
	for _, n := range names {
		if !namePattern.MatchString(domain.Unescape(n.value)) {
			return domain.NewValidationError(n.kind, n.field, n.reason)
		}
	}
	return nil
}
