package llm

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

var dataURIPattern = regexp.MustCompile(`^data:(image/[a-zA-Z+.-]+);base64,(.*)$`)

// ImageData is a decoded data-URI image.
type ImageData struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 image data URI of the form
// data:image/<format>;base64,<payload>.
func ParseDataURI(uri string) (*ImageData, error) {
	matches := dataURIPattern.FindStringSubmatch(uri)
	if matches == nil {
		return nil, fmt.Errorf("invalid base64 image format")
	}

	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return &ImageData{
		MIMEType: matches[1],
		Data:     data,
	}, nil
}
