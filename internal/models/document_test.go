package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfidentialityRankOrdering(t *testing.T) {
	require.Less(t, ConfidentialityPublic.Rank(), ConfidentialityConfidentiel.Rank())
	require.Less(t, ConfidentialityConfidentiel.Rank(), ConfidentialityStrictementPrive.Rank())
	require.Equal(t, -1, Confidentiality("SECRET").Rank())
	require.False(t, Confidentiality("SECRET").Valid())
}

func TestParseCategoryClampsUnknownValues(t *testing.T) {
	require.Equal(t, CategoryDeliberation, ParseCategory("Délibération"))
	require.Equal(t, CategoryNoteInterne, ParseCategory("  note interne "))
	require.Equal(t, CategoryAutre, ParseCategory("Facture fournisseur"))
	require.Equal(t, CategoryAutre, ParseCategory(""))
}

func TestSignableStatuses(t *testing.T) {
	require.True(t, StatusRecu.Signable())
	require.True(t, StatusEnCours.Signable())
	require.False(t, StatusValide.Signable())
	require.False(t, StatusArchive.Signable())
}

func TestTagEncodingRoundTrip(t *testing.T) {
	require.Equal(t, []string{"Industrie", "Emploi"}, decodeTags(encodeTags([]string{" Industrie", "Emploi ", ""})))
	require.Empty(t, decodeTags(encodeTags(nil)))
	require.Equal(t, "", encodeTags([]string{"  "}))
}
