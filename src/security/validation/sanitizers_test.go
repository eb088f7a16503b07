package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1:A9)", SanitizeForFormulaInjection("=SUM(A1:A9)"))
	assert.Equal(t, "'+1.5%", SanitizeForFormulaInjection("+1.5%"))
	assert.Equal(t, "'-0.25", SanitizeForFormulaInjection("-0.25"))
	assert.Equal(t, "'@cmd", SanitizeForFormulaInjection("@cmd"))
	assert.Equal(t, "Year 4", SanitizeForFormulaInjection("Year 4"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "Management Fee: 1.75%", StripUnprintable("Management\x00 Fee:\x07 1.75%"))
	assert.Equal(t, "line one\nline two", StripUnprintable("line one\nline two"))
	assert.Equal(t, "tab\there", StripUnprintable("tab\there"))
}

func TestCleanFreeText(t *testing.T) {
	assert.Equal(t, "The Fund shall reduce", CleanFreeText("  The Fund shall\x00 reduce \n"))
	assert.Equal(t, "", CleanFreeText("  \x00\x01 "))
}
