package ai_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiads/talentscout/internal/adapter/ai"
)

func TestValidateKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key  string
		want bool
	}{
		{"gsk_" + strings.Repeat("a", 16), true},
		{"gsk_" + strings.Repeat("A1_-", 8), true},
		{"  gsk_" + strings.Repeat("a", 16) + "  ", true}, // surrounding spaces trimmed
		{"gsk_short", false},
		{"sk_" + strings.Repeat("a", 20), false},
		{"gsk_" + strings.Repeat("a", 200), false},
		{"gsk_abc!def$ghi%jkl&", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ai.ValidateKey(c.key), "key=%q", c.key)
	}
}

func TestSanitizeKey_ExtractsFromPaste(t *testing.T) {
	t.Parallel()
	key := "gsk_" + strings.Repeat("a", 20)
	got, warnings := ai.SanitizeKey("export GROQ_API_KEY=" + key + "\n")
	assert.Equal(t, key, got)
	assert.Empty(t, warnings)
}

func TestSanitizeKey_MultipleKeysWarns(t *testing.T) {
	t.Parallel()
	k1 := "gsk_" + strings.Repeat("a", 20)
	k2 := "gsk_" + strings.Repeat("b", 20)
	got, warnings := ai.SanitizeKey(k1 + " " + k2)
	assert.Equal(t, k1, got)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "2 keys")
}

func TestSanitizeKey_EmptyAndGarbage(t *testing.T) {
	t.Parallel()
	got, warnings := ai.SanitizeKey("   ")
	assert.Empty(t, got)
	assert.NotEmpty(t, warnings)

	got, warnings = ai.SanitizeKey("hello world")
	assert.Empty(t, got)
	assert.NotEmpty(t, warnings)
}
