package utils_test

import (
	"regexp"
	"testing"

	"github.com/bankchen1/fo3-ledger-core/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN[0-9A-F]{12}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := utils.GenerateReferenceNumber()
		require.NoError(t, err)
		assert.True(t, pattern.MatchString(ref), "reference %q does not match TXN + 12 uppercase hex", ref)
		assert.False(t, seen[ref], "reference %q generated twice", ref)
		seen[ref] = true
	}
}

func TestReversalReferenceNumber(t *testing.T) {
	assert.Equal(t, "REV-TXN4F9A01BC23DE", utils.ReversalReferenceNumber("TXN4F9A01BC23DE"))
}
