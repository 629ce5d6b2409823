package user

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidCPF checks the two verification digits of a Brazilian CPF.
func IsValidCPF(cpf string) bool {
	var digits []int
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return false
	}

	allEqual := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += digits[i] * (10 - i)
	}
	check := 11 - (sum % 11)
	if check >= 10 {
		check = 0
	}
	if check != digits[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += digits[i] * (11 - i)
	}
	check = 11 - (sum % 11)
	if check >= 10 {
		check = 0
	}
	return check == digits[10]
}

// IsStrongPassword requires at least 8 characters with upper case, lower case
// and digits.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasUpper := strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' })
	hasLower := strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' })
	hasDigit := strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' })
	return hasUpper && hasLower && hasDigit
}
