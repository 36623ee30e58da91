package qrsync

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/models"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Version: models.SnapshotVersion,
		Date:    time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Events: []models.Event{{
			ID:      "ev-1",
			Name:    "Dinner",
			Columns: []string{"Name"},
			Guests: []models.Guest{
				{ID: "g1", Status: models.StatusYes, Fields: map[string]string{"Name": "Ana"}},
			},
		}},
		CurrentEventID: "ev-1",
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	payload, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.NotContains(t, payload, "+", "payload must be URL-safe")
	assert.NotContains(t, payload, "/")
	assert.NotContains(t, payload, "=")

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode("!!!not base64!!!")
	assert.Error(t, err)

	_, err = Decode("aGVsbG8gd29ybGQ")
	assert.Error(t, err, "valid base64 that is not gzip is rejected")
}

func TestDecode_RejectsSnapshotWithoutEvents(t *testing.T) {
	payload, err := Encode(models.Snapshot{Version: models.SnapshotVersion})
	require.NoError(t, err)

	_, err = Decode(payload)
	assert.Error(t, err)
}

func TestSyncURL_ParseSyncURL(t *testing.T) {
	raw, err := SyncURL("https://guest.example.com/app", sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "https://guest.example.com/app?sync="))

	got, err := ParseSyncURL(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestParseSyncURL_MissingParam(t *testing.T) {
	_, err := ParseSyncURL("https://guest.example.com/app?other=1")
	assert.Error(t, err)
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("https://guest.example.com", sampleSnapshot(), 256)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestQRTerminal(t *testing.T) {
	out, err := QRTerminal("https://guest.example.com", sampleSnapshot())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
