package gls

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecode_SuspiciousPlaceholders(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := NewDecoder(otelzap.New(zap.New(core)))

	_, err := d.Decode(context.Background(), &shipper.TransportResult{Body: []byte("|RESULT:E000:|T8913:ABC123|")}, "ZPL")
	require.NoError(t, err)

	entries := logs.FilterMessage("Label placeholders without values").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "placeholders")
}

func TestDecode_KnownGapsAreQuiet(t *testing.T) {
	tmpl, err := labelTemplate()
	require.NoError(t, err)

	line := "|RESULT:E000:|"
	for _, name := range tmpl.Placeholders() {
		if slices.Contains(knownGaps, name) {
			continue
		}
		line += name + ":x|"
	}
	if !slices.Contains(tmpl.Placeholders(), tagParcelNumber) {
		line += tagParcelNumber + ":ABC123|"
	}

	core, logs := observer.New(zap.InfoLevel)
	d := NewDecoder(otelzap.New(zap.New(core)))
	_, err = d.Decode(context.Background(), &shipper.TransportResult{Body: []byte(line)}, "ZPL")
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("Label placeholders without values").Len())
}

func TestDecode_UnmappedTagIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDecoder(otelzap.New(zap.New(core)))

	_, err := d.Decode(context.Background(), &shipper.TransportResult{Body: []byte("|RESULT:E863:T863:|")}, "ZPL")
	require.Error(t, err)

	entries := logs.FilterMessage("GLS rejected the request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "T863", entries[0].ContextMap()["tag"])
	assert.Equal(t, "toAddress.street1", entries[0].ContextMap()["field"])
}
