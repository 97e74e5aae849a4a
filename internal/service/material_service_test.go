package service

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gzBytes  = []byte("\x1f\x8b\x08\x00\x00\x00\x00\x00\x00\x03\x01\x00\x00\xff\xff")
)

func TestSniffMaterial(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantType string
		wantExt  string
		wantErr  error
	}{
		{"pdf", pdfBytes, "application/pdf", ".pdf", nil},
		{"png", pngBytes, "image/png", ".png", nil},
		{"plain text", []byte("week one reading list\n"), "text/plain", ".txt", nil},
		{"gzip rejected", gzBytes, "", "", ErrUnsupportedFileType},
		{"empty", nil, "", "", ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, ext, err := SniffMaterial(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(ct, tt.wantType), ct)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestDecodeBase64Content(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pdfBytes)

	data, err := DecodeBase64Content(encoded)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)

	data, err = DecodeBase64Content("  data:application/pdf;base64," + encoded + "\n")
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)

	data, err = DecodeBase64Content(base64.RawStdEncoding.EncodeToString([]byte("ab")))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), data)

	_, err = DecodeBase64Content("data:text/plain," + encoded)
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = DecodeBase64Content("not base64 at all!")
	assert.ErrorIs(t, err, ErrInvalidContent)
}
