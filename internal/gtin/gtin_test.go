package gtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		want   int
	}{
		{"400638133393", 1},
		{"590339637347", 3},
		{"123456789012", 8},
		{"501234567890", 0},
	}
	for _, tt := range tests {
		got, err := CheckDigit(tt.prefix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "prefix %s", tt.prefix)
	}
}

func TestCheckDigit_BadInput(t *testing.T) {
	t.Parallel()

	_, err := CheckDigit("12345")
	assert.Error(t, err)

	_, err = CheckDigit("40063813339A")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("4006381333931"))
	assert.True(t, Valid("5903396373473"))
	assert.True(t, Valid("1234567890128"))

	// Wrong check digit.
	assert.False(t, Valid("4006381333930"))
	// Wrong length.
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("40063813339311"))
	// Non-digit content.
	assert.False(t, Valid("400638133393A"))
	assert.False(t, Valid("A006381333931"))
	assert.False(t, Valid(""))
}

func TestFromUPC(t *testing.T) {
	t.Parallel()

	code, ok := FromUPC("036000291452")
	require.True(t, ok)
	assert.Equal(t, "0036000291452", code)

	// Formatting characters are cleaned first.
	code, ok = FromUPC("0-36000-29145-2")
	require.True(t, ok)
	assert.Equal(t, "0036000291452", code)

	_, ok = FromUPC("036000291453") // bad check digit after promotion
	assert.False(t, ok)

	_, ok = FromUPC("12345")
	assert.False(t, ok)
}

func TestCleanDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4006381333931", CleanDigits("EAN: 4006381-333931"))
	assert.Equal(t, "", CleanDigits(""))
	assert.Equal(t, "", CleanDigits("no digits here"))
}

func TestFindCodes(t *testing.T) {
	t.Parallel()

	text := "Barcode 4006381333931 also listed as 4006381333930 and UPC 036000291452."
	codes := FindCodes(text)

	// The invalid 13-digit run is dropped, the UPC is promoted.
	assert.Equal(t, []string{"4006381333931", "0036000291452"}, codes)
}

func TestFindCodes_SeparatedDigits(t *testing.T) {
	t.Parallel()

	codes := FindCodes("EAN-13: 4 006381 333931")
	assert.Equal(t, []string{"4006381333931"}, codes)
}

func TestFindCodes_Dedupes(t *testing.T) {
	t.Parallel()

	codes := FindCodes("4006381333931 twice: 4006381333931")
	assert.Equal(t, []string{"4006381333931"}, codes)
}

func TestFindCodes_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FindCodes(""))
	assert.Empty(t, FindCodes("nothing numeric"))
	assert.Empty(t, FindCodes("123456"))
}

func TestChooseBest_KeywordBoost(t *testing.T) {
	t.Parallel()

	texts := []WeightedText{
		{Text: "random listing 5903396373473 in stock", Weight: 1.0},
		{Text: "EAN barcode: 4006381333931", Weight: 1.0},
	}

	// The keyword-bearing snippet doubles its candidate's score.
	assert.Equal(t, "4006381333931", ChooseBest(texts))
}

func TestChooseBest_WeightWins(t *testing.T) {
	t.Parallel()

	texts := []WeightedText{
		{Text: "code 5903396373473", Weight: 1.0},
		{Text: "code 4006381333931", Weight: 3.0},
	}
	assert.Equal(t, "4006381333931", ChooseBest(texts))
}

func TestChooseBest_TieGoesToFirstSeen(t *testing.T) {
	t.Parallel()

	texts := []WeightedText{
		{Text: "code 5903396373473", Weight: 1.0},
		{Text: "code 4006381333931", Weight: 1.0},
	}
	assert.Equal(t, "5903396373473", ChooseBest(texts))
}

func TestChooseBest_NoCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ChooseBest(nil))
	assert.Equal(t, "", ChooseBest([]WeightedText{{Text: "nothing", Weight: 1.0}}))
}
