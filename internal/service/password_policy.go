package service

import (
	"fmt"
	"unicode"

	"github.com/wholesale-phone/internal/config"
)

type passwordPolicyError struct {
	message string
}

func (e passwordPolicyError) Error() string {
	return e.message
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// Message 面向调用方的提示
func (e passwordPolicyError) Message() string {
	return e.message
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{message: fmt.Sprintf("Password must be at least %d characters long.", policy.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return passwordPolicyError{message: "Password must contain an uppercase letter."}
	}
	if policy.RequireLower && !hasLower {
		return passwordPolicyError{message: "Password must contain a lowercase letter."}
	}
	if policy.RequireNumber && !hasNumber {
		return passwordPolicyError{message: "Password must contain a number."}
	}
	if policy.RequireSpecial && !hasSpecial {
		return passwordPolicyError{message: "Password must contain a special character."}
	}
	return nil
}
