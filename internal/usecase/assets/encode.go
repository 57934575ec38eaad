package assets

import (
	"bytes"
	"encoding/base64"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"
)

var mediaTypes = map[string]string{
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".webp":  "image/webp",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".woff2": "font/woff2",
	".woff":  "font/woff",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".css":   "text/css",
}

// MediaType infers the media type of key from its extension
func MediaType(key string) string {
	if mt, ok := mediaTypes[strings.ToLower(path.Ext(key))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// DataURI encodes b as a base64 data URI
func DataURI(mediaType string, b []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// downscale re-encodes PNG and JPEG images wider than maxWidth as a PNG of
// that width. Other inputs, and images that fail to decode, are returned
// unchanged.
func downscale(key string, b []byte, maxWidth int) (string, []byte) {
	mediaType := MediaType(key)
	if maxWidth <= 0 || (mediaType != "image/png" && mediaType != "image/jpeg") {
		return mediaType, b
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil || cfg.Width <= maxWidth {
		return mediaType, b
	}

	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return mediaType, b
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return mediaType, b
	}
	return "image/png", buf.Bytes()
}
