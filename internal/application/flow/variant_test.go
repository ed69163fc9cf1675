package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRating(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{10, "5–10%"},
		{9, "5–10%"},
		{8, "25–40%"},
		{7, "25–40%"},
		{6, "50–70%"},
		{5, "50–70%"},
		{4, "80%+"},
		{0, "80%+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestByName_KnownVariants(t *testing.T) {
	rated, err := ByName("rated", Options{})
	require.NoError(t, err)
	assert.True(t, rated.CollectRating)
	assert.True(t, rated.RatingColumn)
	assert.Equal(t, IdentifierLoose, rated.IdentifierMode)

	binary, err := ByName("binary", Options{})
	require.NoError(t, err)
	assert.False(t, binary.CollectRating)
	assert.True(t, binary.BranchOnExpectations)
	assert.Equal(t, IdentifierStrict, binary.IdentifierMode)
	assert.Equal(t, "✅ Да", binary.PositiveExpectation)
}

func TestByName_DefaultsToRated(t *testing.T) {
	v, err := ByName("", Options{})
	require.NoError(t, err)
	assert.Equal(t, "rated", v.Name)
}

func TestByName_UnknownVariant(t *testing.T) {
	_, err := ByName("fancy", Options{})
	assert.Error(t, err)
}

func TestByName_Overrides(t *testing.T) {
	skip := false
	v, err := ByName("rated", Options{
		SecondaryIDMinLen:         8,
		SecondaryIDMaxLen:         10,
		HighRatingSkipsIdentifier: &skip,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, v.SecondaryIDMinLen)
	assert.Equal(t, 10, v.SecondaryIDMaxLen)
	assert.False(t, v.HighRatingSkipsIdentifier)
}

func TestByName_InvertedToleranceRejected(t *testing.T) {
	_, err := ByName("rated", Options{SecondaryIDMinLen: 10, SecondaryIDMaxLen: 9})
	assert.Error(t, err)
}

func TestReasonKeyboard(t *testing.T) {
	v := Rated()
	kb := v.ReasonKeyboard()

	require.True(t, kb.Inline)
	require.Len(t, kb.Options, 5)
	assert.Equal(t, "1. Долгое подключение поставщиков", kb.Options[0].Label)
	assert.Equal(t, "reason:1", kb.Options[0].Data)
	assert.Equal(t, "reason:5", kb.Options[4].Data)
}

func TestSkipKeyboard(t *testing.T) {
	v := Binary()
	kb := v.SkipKeyboard()

	require.True(t, kb.Inline)
	require.Len(t, kb.Options, 1)
	assert.Equal(t, "Пропустить", kb.Options[0].Label)
	assert.Equal(t, SkipCallback, kb.Options[0].Data)
}

func TestIsExpectationOption(t *testing.T) {
	v := Rated()
	assert.True(t, v.IsExpectationOption("⚖️ Частично"))
	assert.False(t, v.IsExpectationOption("может быть"))

	b := Binary()
	assert.False(t, b.IsExpectationOption("⚖️ Частично"))
}
