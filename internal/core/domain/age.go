package domain

import "time"

// AdultAge is the minimum completed age accepted for a registration.
const AdultAge = 18

// CompletedYears returns the number of birthdays completed between birth and at,
// comparing calendar dates only.
func CompletedYears(birth, at time.Time) int {
	by, bm, bd := birth.Date()
	ay, am, ad := at.Date()
	years := ay - by
	if am < bm || (am == bm && ad < bd) {
		years--
	}
	return years
}
