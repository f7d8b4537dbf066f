package utils

import (
	"fmt"
	"strings"
)

const (
	referencePrefix    = "TXN"
	referenceHexDigits = 12
)

// GenerateReferenceNumber produces a transaction reference of the form
// "TXN" followed by twelve uppercase hex digits, e.g. "TXN4F9A01BC23DE".
// Used when the caller does not supply its own reference.
func GenerateReferenceNumber() (string, error) {
	random, err := GenerateSecureRandomString(referenceHexDigits / 2)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference number: %w", err)
	}
	return referencePrefix + strings.ToUpper(random), nil
}

// ReversalReferenceNumber derives the reference for a compensating
// transaction from the reference it reverses.
func ReversalReferenceNumber(originalReference string) string {
	return "REV-" + originalReference
}
