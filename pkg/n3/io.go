package n3

import (
	"fmt"
	"io"
	"strings"
)

// DocumentParser parses N3Logic documents from a reader
type DocumentParser interface {
	// Parse reads the whole document and parses it
	Parse(reader io.Reader) (*ParseResult, error)

	// ContentType returns the MIME type this parser handles
	ContentType() string
}

// NewParser creates a document parser based on the content type
func NewParser(contentType string, opts Options) (DocumentParser, error) {
	// Normalize content type (remove parameters like charset)
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "text/n3", "application/n3", "text/x-n3", "text/plain", "":
		return &N3IOParser{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// N3IOParser parses N3Logic text
type N3IOParser struct {
	opts Options
}

func (p *N3IOParser) ContentType() string {
	return "text/n3"
}

func (p *N3IOParser) Parse(reader io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return ParseBytes(data, p.opts)
}

// GetSupportedContentTypes returns a list of all supported content types
func GetSupportedContentTypes() []string {
	return []string{
		"text/n3",
		"application/n3",
		"text/x-n3",
		"text/plain",
	}
}
