package analysis

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrImageRequired    = errors.New("image data is required")
	ErrInvalidImageData = errors.New("invalid image data format")
)

// ParseDataURL decodes "data:image/jpeg;base64,<payload>". It returns the
// decoded image and the base64 payload. The content type is sniffed from the
// bytes; the declared one is ignored.
func ParseDataURL(s string) (Image, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, "", ErrImageRequired
	}
	_, payload, ok := strings.Cut(s, ",")
	if !ok || payload == "" {
		return Image{}, "", ErrInvalidImageData
	}
	payload = strings.Join(strings.Fields(payload), "")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, "", ErrInvalidImageData
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return Image{}, "", ErrInvalidImageData
	}
	return Image{ContentType: ct, Data: data}, payload, nil
}
