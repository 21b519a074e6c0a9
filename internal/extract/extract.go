// Package extract reads indexable text out of corpus files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrBinaryContent is returned for files that look like binary data
	ErrBinaryContent = errors.New("binary content")

	// ErrTooLarge is returned for files above the configured size limit
	ErrTooLarge = errors.New("file too large")
)

// sniffLen is how many leading bytes are inspected for NUL bytes.
const sniffLen = 8000

var markupExtensions = map[string]struct{}{
	".html":  {},
	".htm":   {},
	".xhtml": {},
	".xml":   {},
}

// strictPolicy removes every tag and drops script/style bodies. Stripped
// tags leave a space so adjacent elements do not merge into one term.
var strictPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// IsMarkup reports whether path is treated as HTML/XML.
func IsMarkup(path string) bool {
	_, ok := markupExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadFile returns the text content of path as runes. Markup files have
// their tags stripped and entities decoded. maxBytes <= 0 disables the limit.
func ReadFile(path string, maxBytes int64) ([]rune, error) {
	if maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.Size() > maxBytes {
			return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrTooLarge)
		}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the corpus walk
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Text(path, data)
}

// Text converts raw file bytes to runes, picking the decoder from the extension of path.
func Text(path string, data []byte) ([]rune, error) {
	if bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}
	if IsMarkup(path) {
		return []rune(StripMarkup(data)), nil
	}
	return []rune(string(data)), nil
}

// StripMarkup removes tags and decodes entities, leaving plain text.
func StripMarkup(data []byte) string {
	sanitized := strictPolicy.SanitizeBytes(data)
	return html.UnescapeString(string(sanitized))
}
