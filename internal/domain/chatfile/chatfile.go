// Package chatfile holds the upload boundary for chat exports.
package chatfile

import (
	"errors"
	"mime"
	"net/http"
	"strings"
)

// Notice is shown to the user when an upload is rejected.
const Notice = "Invalid file type. Please upload a .txt file."

const plainText = "text/plain"

var ErrInvalidFileType = errors.New(Notice)

// ChatFile is the raw text of one uploaded chat export. It only lives for the
// duration of one analysis request.
type ChatFile struct {
	Name    string
	Content string
}

// Validate accepts plain text only. declaredType is the MIME type reported by
// the client and may be empty. The content is sniffed as well and must look like
// some text/* type: a chat that opens with "<b" sniffs as text/html and is
// still accepted, while binary content is not.
func Validate(name, declaredType string, data []byte) (ChatFile, error) {
	if declaredType != "" {
		mt, _, err := mime.ParseMediaType(declaredType)
		if err != nil || mt != plainText {
			return ChatFile{}, ErrInvalidFileType
		}
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if !strings.HasPrefix(sniffed, "text/") {
		return ChatFile{}, ErrInvalidFileType
	}
	return ChatFile{Name: strings.TrimSpace(name), Content: string(data)}, nil
}

// TypeByName guesses the declared type from a file extension, for callers that
// read from disk instead of a browser upload.
func TypeByName(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return mime.TypeByExtension(strings.ToLower(name[i:]))
}
