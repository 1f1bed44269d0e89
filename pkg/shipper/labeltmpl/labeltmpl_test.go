package labeltmpl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper/labeltmpl"
)

func TestParse_Placeholders(t *testing.T) {
	tmpl, err := labeltmpl.Parse("^FD$T8913 ^FS ^FD${T860}^FS $T8913 costs $$5")
	require.NoError(t, err)
	assert.Equal(t, []string{"T8913", "T860"}, tmpl.Placeholders())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"trailing dollar", "price $"},
		{"digit after dollar", "^FD$1^FS"},
		{"unterminated brace", "^FD${T860^FS"},
		{"empty braces", "^FD${}^FS"},
		{"bad name in braces", "^FD${T-1}^FS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := labeltmpl.Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, labeltmpl.ErrInvalidPlaceholder))
		})
	}
}

func TestRender(t *testing.T) {
	tmpl := labeltmpl.MustParse("A=$A B=${B}x C=$C $$")

	got := tmpl.Render(map[string]string{"A": "1", "B": "2"}, labeltmpl.Policy{})
	assert.Equal(t, "A=1 B=2x C= $", got)
}

func TestRender_ReportsSuspicious(t *testing.T) {
	tmpl := labeltmpl.MustParse("$T8913 $T8900 $T860 $T8901")

	var reported []string
	calls := 0
	got := tmpl.Render(map[string]string{"T8913": "ABC"}, labeltmpl.Policy{
		KnownGaps: []string{"T8900", "T8901"},
		OnSuspicious: func(names []string) {
			calls++
			reported = names
		},
	})

	assert.Equal(t, "ABC   ", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"T860"}, reported)
}

func TestRender_KnownGapsOnly(t *testing.T) {
	tmpl := labeltmpl.MustParse("$T8913 $T8900")

	called := false
	tmpl.Render(map[string]string{"T8913": "ABC"}, labeltmpl.Policy{
		KnownGaps:    []string{"T8900"},
		OnSuspicious: func([]string) { called = true },
	})
	assert.False(t, called)
}

func TestMissing(t *testing.T) {
	tmpl := labeltmpl.MustParse("$B $A $B")
	assert.Equal(t, []string{"A", "B"}, tmpl.Missing(nil))
	assert.Empty(t, tmpl.Missing(map[string]string{"A": "", "B": ""}))
}
