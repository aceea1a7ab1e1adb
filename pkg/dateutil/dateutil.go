// Package dateutil holds calendar helpers for retiree details.
package dateutil

import (
	"time"
)

// Age calculates the age in completed years at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}
