package httpserver

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidationError describes one rejected intake field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult aggregates field errors; Valid is true when none exist.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks basic well-formedness, not deliverability.
func ValidateEmail(email string) ValidationResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "REQUIRED", "Email is required")
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return invalid("email", "INVALID_FORMAT", "Email address is not well-formed")
	}
	return ValidationResult{Valid: true}
}

// ValidatePhone strips formatting characters and requires minDigits-15 digits.
// Separators (+, spaces, dashes, dots, parentheses) are allowed; any other
// non-digit character rejects the value.
func ValidatePhone(phone string, minDigits int) ValidationResult {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return invalid("phone", "REQUIRED", "Phone number is required")
	}
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting, ignored
		default:
			return invalid("phone", "INVALID_FORMAT", "Phone number contains invalid characters")
		}
	}
	if digits < minDigits || digits > 15 {
		return invalid("phone", "INVALID_LENGTH", "Phone number must contain between the minimum and 15 digits")
	}
	return ValidationResult{Valid: true}
}

// ValidateTechStack requires at least one non-blank technology.
func ValidateTechStack(stack []string) ValidationResult {
	for _, t := range stack {
		if strings.TrimSpace(t) != "" {
			return ValidationResult{Valid: true}
		}
	}
	return invalid("tech_stack", "REQUIRED", "At least one technology is required")
}

// ValidateSessionID checks the path parameter shape (UUID-ish allowlist).
func ValidateSessionID(id string) ValidationResult {
	if id == "" {
		return invalid("id", "REQUIRED", "Session ID is required")
	}
	if len(id) > 100 {
		return invalid("id", "TOO_LONG", "Session ID is too long (max 100 characters)")
	}
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(id) {
		return invalid("id", "INVALID_FORMAT", "Session ID contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

func invalid(field, code, msg string) ValidationResult {
	return ValidationResult{Valid: false, Errors: []ValidationError{{Field: field, Code: code, Message: msg}}}
}

func mergeResults(results ...ValidationResult) ValidationResult {
	out := ValidationResult{Valid: true}
	for _, r := range results {
		if !r.Valid {
			out.Valid = false
			out.Errors = append(out.Errors, r.Errors...)
		}
	}
	return out
}
