package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTextRepairsEuroSign(t *testing.T) {
	got := CleanText("â‚¬ 450.000 k.k.")
	require.Contains(t, got, "€")
	require.NotContains(t, got, "â‚¬")
}

func TestCleanTextRepairsAccents(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CaféÂ aan de gracht", "Café aan de gracht"},
		{"GeÃ¯soleerd", "Geïsoleerd"},
		{"PrivÃ©tuin", "Privétuin"},
		{"Ã¶Ã¼Ã»", "öüû"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CleanText(tc.in))
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"â‚¬ 1.234,56",
		"Woonoppervlakte 120 m²",
		"GeÃ«nergiseerd Ã©n geÃ¯soleerd",
		"plain ascii text",
		"",
	}
	for _, in := range inputs {
		once := CleanText(in)
		require.Equal(t, once, CleanText(once), "input %q", in)
	}
}

func TestExtractNumericPrice(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"thousands dots", "€ 450.000", 450000.0, true},
		{"decimal comma", "€1.234,56", 1234.56, true},
		{"mojibake currency mark", "â‚¬ 325.000 k.k.", 325000.0, true},
		{"no currency mark", "450.000", 0, false},
		{"empty", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractNumericPrice(tc.in)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestExtractArea(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"unicode suffix", "120 m²", 120.0, true},
		{"ascii suffix with comma", "85,5 m2", 85.5, true},
		{"embedded", "Woonoppervlakte: 96 m² (netto)", 96.0, true},
		{"no unit", "120", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractArea(tc.in)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestExtractYearBuilt(t *testing.T) {
	got, ok := ExtractYearBuilt("Bouwjaar: 1998")
	require.True(t, ok)
	require.Equal(t, 1998, got)

	_, ok = ExtractYearBuilt("geen bouwjaar bekend")
	require.False(t, ok)
}

func TestCleanValue(t *testing.T) {
	t.Run("currency becomes number", func(t *testing.T) {
		require.InDelta(t, 450000.0, CleanValue("€ 450.000 k.k.", "").(float64), 1e-9)
	})
	t.Run("area becomes number", func(t *testing.T) {
		require.InDelta(t, 120.0, CleanValue("120 m²", "").(float64), 1e-9)
	})
	t.Run("percentage keeps suffix", func(t *testing.T) {
		require.Equal(t, "4,2%", CleanValue("groei van 4,2 % per jaar", "").(string))
	})
	t.Run("example marks percentage", func(t *testing.T) {
		require.Equal(t, "12%", CleanValue("12 %", "5.0%").(string))
	})
	t.Run("plain text trimmed", func(t *testing.T) {
		require.Equal(t, "Appartement", CleanValue("  Appartement \n", "").(string))
	})
	t.Run("unparsable currency degrades to original", func(t *testing.T) {
		in := "€ prijs op aanvraag"
		got := CleanValue(in, "")
		require.Equal(t, in, got)
	})
	t.Run("empty is nil", func(t *testing.T) {
		require.Nil(t, CleanValue("", ""))
	})
}

func TestExtractNumberDutchConvention(t *testing.T) {
	got, ok := extractNumber("€ 1.234,56")
	require.True(t, ok)
	require.InDelta(t, 1234.56, got, 1e-9)

	// Thousands dots count as separators even without a decimal comma.
	got, ok = extractNumber("€ 450.000 k.k.")
	require.True(t, ok)
	require.InDelta(t, 450000.0, got, 1e-9)

	got, ok = extractNumber("€ 1.250.000")
	require.True(t, ok)
	require.InDelta(t, 1250000.0, got, 1e-9)

	got, ok = extractNumber("3 kamers")
	require.True(t, ok)
	require.InDelta(t, 3.0, got, 1e-9)

	_, ok = extractNumber(strings.Repeat("x", 10))
	require.False(t, ok)
}
