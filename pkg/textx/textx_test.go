package textx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abiads/talentscout/pkg/textx"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello world", textx.SanitizeText("  hello world  "))
	assert.Equal(t, "a\nb", textx.SanitizeText("a\nb"))
	assert.Equal(t, "ab", textx.SanitizeText("a\x00\x01b"))
	assert.Equal(t, "", textx.SanitizeText("\x00\x1f"))
}

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a b c", textx.CollapseSpaces("a   b\n\tc"))
	assert.Equal(t, "", textx.CollapseSpaces("   "))
}

func TestWordSet(t *testing.T) {
	t.Parallel()
	set := textx.WordSet("The quick the QUICK fox")
	assert.Len(t, set, 3)
	_, ok := set["quick"]
	assert.True(t, ok)
	assert.Empty(t, textx.WordSet(""))
}
