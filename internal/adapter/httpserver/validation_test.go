package httpserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	httpserver "github.com/Abiads/talentscout/internal/adapter/httpserver"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.True(t, httpserver.ValidateEmail("ada@example.com").Valid)
	assert.True(t, httpserver.ValidateEmail("a.b+tag@sub.example.co.uk").Valid)
	assert.False(t, httpserver.ValidateEmail("").Valid)
	assert.False(t, httpserver.ValidateEmail("not-an-email").Valid)
	assert.False(t, httpserver.ValidateEmail("two@@example.com").Valid)
	assert.False(t, httpserver.ValidateEmail("no@tld").Valid)
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()
	assert.True(t, httpserver.ValidatePhone("+44 20 7946 0958", 7).Valid)
	assert.True(t, httpserver.ValidatePhone("(212) 555-0123", 7).Valid)
	assert.True(t, httpserver.ValidatePhone("1234567", 7).Valid)
	assert.False(t, httpserver.ValidatePhone("123456", 7).Valid, "below minimum digits")
	assert.False(t, httpserver.ValidatePhone("1234567890123456", 7).Valid, "above 15 digits")
	assert.False(t, httpserver.ValidatePhone("12345abc678", 7).Valid, "letters rejected")
	assert.False(t, httpserver.ValidatePhone("", 7).Valid)

	// The stricter revision raises the minimum.
	assert.False(t, httpserver.ValidatePhone("123456789", 10).Valid)
	assert.True(t, httpserver.ValidatePhone("1234567890", 10).Valid)
}

func TestValidateTechStack(t *testing.T) {
	t.Parallel()
	assert.True(t, httpserver.ValidateTechStack([]string{"go"}).Valid)
	assert.True(t, httpserver.ValidateTechStack([]string{"  ", "python"}).Valid)
	assert.False(t, httpserver.ValidateTechStack(nil).Valid)
	assert.False(t, httpserver.ValidateTechStack([]string{"", "   "}).Valid)
}

func TestValidateSessionID(t *testing.T) {
	t.Parallel()
	assert.True(t, httpserver.ValidateSessionID("5f0f7e8a-1c2d-4e3f-9a8b-7c6d5e4f3a2b").Valid)
	assert.False(t, httpserver.ValidateSessionID("").Valid)
	assert.False(t, httpserver.ValidateSessionID("has space").Valid)
	assert.False(t, httpserver.ValidateSessionID("slash/attack").Valid)
}
