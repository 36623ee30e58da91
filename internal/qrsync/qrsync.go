// Package qrsync moves the full application state between devices through a
// QR code: the snapshot is compressed, wrapped in a sync URL and rendered as
// a scannable code. The payload contains all event data, so the code should
// be treated like the data itself.
package qrsync

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"guestlist/internal/models"
)

// MaxPayloadKB bounds the compressed payload; beyond it a file export is
// the right tool.
const MaxPayloadKB = 2048

const syncParam = "sync"

// Encode compresses a snapshot into a URL-safe payload string.
func Encode(snapshot models.Snapshot) (string, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}

	payload := base64.RawURLEncoding.EncodeToString(buf.Bytes())
	if sizeKB := float64(len(payload)) / 1024; sizeKB > MaxPayloadKB {
		return "", fmt.Errorf("data too large for QR sync (%.0fKB, limit %dKB); export a file instead", sizeKB, MaxPayloadKB)
	}
	return payload, nil
}

// Decode reverses Encode.
func Decode(payload string) (models.Snapshot, error) {
	var snapshot models.Snapshot

	compressed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return snapshot, fmt.Errorf("invalid sync payload: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return snapshot, fmt.Errorf("invalid sync payload: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return snapshot, fmt.Errorf("invalid sync payload: %w", err)
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return snapshot, fmt.Errorf("invalid sync payload: %w", err)
	}
	if snapshot.Events == nil {
		return snapshot, fmt.Errorf("invalid sync payload: no event list")
	}
	return snapshot, nil
}

// SyncURL builds the device-to-device handoff URL for a snapshot.
func SyncURL(baseURL string, snapshot models.Snapshot) (string, error) {
	payload, err := Encode(snapshot)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?%s=%s", strings.TrimRight(baseURL, "?&"), syncParam, payload), nil
}

// ParseSyncURL extracts a snapshot from a handoff URL.
func ParseSyncURL(raw string) (models.Snapshot, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid sync url: %w", err)
	}
	payload := u.Query().Get(syncParam)
	if payload == "" {
		return models.Snapshot{}, fmt.Errorf("invalid sync url: missing %s parameter", syncParam)
	}
	return Decode(payload)
}

// QRPNG renders the sync URL as a PNG image.
func QRPNG(baseURL string, snapshot models.Snapshot, size int) ([]byte, error) {
	syncURL, err := SyncURL(baseURL, snapshot)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(syncURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}

// QRTerminal renders the sync URL as an ASCII QR block for terminal display.
func QRTerminal(baseURL string, snapshot models.Snapshot) (string, error) {
	syncURL, err := SyncURL(baseURL, snapshot)
	if err != nil {
		return "", err
	}
	q, err := qrcode.New(syncURL, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}
	return q.ToSmallString(false), nil
}
