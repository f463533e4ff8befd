package chatfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	chat := []byte("[1/2/24, 9:15:23 AM] Alice: Check this out: https://example.com\n")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		declared string
		data     []byte
		ok       bool
	}{
		{"plain", "text/plain", chat, true},
		{"plain with charset", "text/plain; charset=utf-8", chat, true},
		{"undeclared text", "", chat, true},
		{"empty file", "text/plain", nil, true},
		{"opens like html", "text/plain", []byte("<b>Trip</b> notes\n[1/2/24, 9:15:23 AM] Alice: hi\n"), true},
		{"opens with a comment", "text/plain", []byte("<!-- exported -->\nAlice: hi\n"), true},
		{"opens like xml", "text/plain", []byte("<?xml chat\nAlice: hi\n"), true},
		{"control bytes", "text/plain", []byte("Alice: hi\x00\x01\x02"), false},
		{"declared image", "image/png", png, false},
		{"declared pdf", "application/pdf", chat, false},
		{"csv", "text/csv", chat, false},
		{"binary behind text type", "text/plain", png, false},
		{"malformed type", "text/", chat, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Validate(" chat.txt ", tt.declared, tt.data)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidFileType)
				assert.Equal(t, Notice, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "chat.txt", f.Name)
			assert.Equal(t, string(tt.data), f.Content)
		})
	}
}

func TestTypeByName(t *testing.T) {
	assert.Contains(t, TypeByName("WhatsApp Chat.TXT"), "text/plain")
	assert.Equal(t, "image/png", TypeByName("a.png"))
	assert.Equal(t, "", TypeByName("README"))
}
