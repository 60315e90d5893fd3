package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	numberRegex = regexp.MustCompile(`^PMC-\d{4}-[A-Z0-9]{8}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateApplicationNumber validates a registration number like PMC-2026-1A2B3C4D
func ValidateApplicationNumber(number string) error {
	if !numberRegex.MatchString(number) {
		return fmt.Errorf("invalid application number format: %s", number)
	}
	return nil
}
