// Package media decodes uploaded images and renders them as data URIs.
package media

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
)

// MaxImageSize bounds a decoded upload.
const MaxImageSize = 2 << 20

// ErrInvalidImage is returned for uploads that are not a supported image.
var ErrInvalidImage = errors.New("image must be base64-encoded jpeg, png, webp or gif")

var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Image is a binary image blob with its MIME type.
type Image struct {
	Data []byte
	MIME string
}

// Decode parses s as either a bare base64 string or a data URI. The MIME
// type is sniffed from the bytes; a data URI's declared type is ignored.
func Decode(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidImage
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ";base64,")
		if i < 0 {
			return nil, ErrInvalidImage
		}
		s = s[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return nil, ErrInvalidImage
	}

	mime := http.DetectContentType(data)
	if !allowed[mime] {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, MIME: mime}, nil
}

// DataURI renders the image as data:<mime>;base64,<payload>. A nil image
// renders as the empty string.
func (img *Image) DataURI() string {
	if img == nil || len(img.Data) == 0 {
		return ""
	}
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
