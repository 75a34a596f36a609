package auth

import (
	"fmt"
	"strings"
)

// MinPasswordLength is the shortest password CheckPasswordStrength accepts.
const MinPasswordLength = 12

// weakPasswords are rejected case-insensitively, alone or as a short prefix.
var weakPasswords = []string{
	"admin",
	"password",
	"123456",
	"secret",
	"admin123",
	"password123",
	"123456789",
	"12345678",
	"qwerty",
	"abc123",
	"letmein",
	"welcome",
	"monkey",
	"1234567890",
	"password1",
	"admin1",
	"test",
	"test123",
	"default",
	"root",
	"portfolio",
}

var keyboardPatterns = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
	"qwerty",
	"asdfgh",
	"zxcvb",
}

// CheckPasswordStrength rejects passwords an admin account must not use.
// The admin CLI calls it before hashing; login never does, so legacy
// accounts keep working.
func CheckPasswordStrength(pass string) error {
	if pass == "" {
		return fmt.Errorf("password must not be empty")
	}
	if len(pass) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters (current length: %d)", MinPasswordLength, len(pass))
	}
	// numeric and keyboard checks run first so their message wins over the
	// weak-prefix one
	if isSimpleNumericPattern(pass) {
		return fmt.Errorf("password must not be a simple numeric pattern")
	}
	if isKeyboardPattern(pass) {
		return fmt.Errorf("password must not be a keyboard pattern")
	}

	lower := strings.ToLower(pass)
	for _, weak := range weakPasswords {
		if lower == weak {
			return fmt.Errorf("password must not be a common password")
		}
		if strings.HasPrefix(lower, weak) && len(pass) < MinPasswordLength+5 {
			return fmt.Errorf("password must not be based on a common password")
		}
	}
	return nil
}

// isSimpleNumericPattern matches repeated characters ("111111111111") and
// digit runs that step by one in either direction, wrapping 9 to 0.
func isSimpleNumericPattern(pass string) bool {
	if isRepeatedChar(pass) {
		return true
	}
	for _, ch := range pass {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	ascending, descending := true, true
	for i := 1; i < len(pass); i++ {
		diff := int(pass[i]) - int(pass[i-1])
		if diff != 1 && diff != -9 {
			ascending = false
		}
		if diff != -1 && diff != 9 {
			descending = false
		}
	}
	return ascending || descending
}

func isRepeatedChar(pass string) bool {
	if pass == "" {
		return false
	}
	for i := 1; i < len(pass); i++ {
		if pass[i] != pass[0] {
			return false
		}
	}
	return true
}

func isKeyboardPattern(pass string) bool {
	lower := strings.ToLower(pass)
	for _, pattern := range keyboardPatterns {
		if strings.Contains(lower, pattern) || strings.Contains(lower, reverse(pattern)) {
			return true
		}
	}
	return false
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
