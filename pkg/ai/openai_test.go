package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseExtractionResponseDecodesAndTrims(t *testing.T) {
	content := `{
		"title": "  Arrêté n°45 - Circulation  ",
		"summary": "Restriction de circulation pendant les travaux.",
		"category": "Arrêté Municipal",
		"service": "Voirie",
		"tags": [" Travaux ", "", "Circulation"]
	}`

	result, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	require.Equal(t, "Arrêté n°45 - Circulation", result.Title)
	require.Equal(t, "Arrêté Municipal", result.Category)
	require.Equal(t, []string{"Travaux", "Circulation"}, result.Tags)
}

func TestParseExtractionResponseToleratesMissingFields(t *testing.T) {
	result, err := ParseExtractionResponse(`{"title": "Sans résumé"}`)
	require.NoError(t, err)
	require.Equal(t, "Sans résumé", result.Title)
	require.Empty(t, result.Summary)
	require.Empty(t, result.Tags)
}

func TestParseExtractionResponseRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":    `not json at all`,
		"wrong shape": `{"tags": "Travaux"}`,
		"array root":  `["title"]`,
	}

	for name, content := range cases {
		_, err := ParseExtractionResponse(content)
		require.ErrorIs(t, err, ErrNoResult, name)
	}
}

func TestUnavailableExtractorAlwaysSignalsNoResult(t *testing.T) {
	_, err := Unavailable{}.Extract(context.Background(), ExtractionInput{Text: "Vote budget 2025"})
	require.ErrorIs(t, err, ErrNoResult)
}

func TestNewOpenAIExtractorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIExtractor(OpenAIConfig{})
	require.Error(t, err)
}
