package domain

import (
	"encoding/base64"
	"strings"
)

// DefaultImageMediaType используется, когда хост не сообщил тип изображения.
const DefaultImageMediaType = "image/png"

// EncodedImage - изображение в виде строки "<media-type>;base64,<payload>".
type EncodedImage string

// NormalizeImageMediaType отбрасывает параметры Content-Type и
// заменяет всё, что не начинается с "image/", на image/png.
func NormalizeImageMediaType(contentType string) string {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return DefaultImageMediaType
	}
	return mediaType
}

// EncodeImage собирает EncodedImage из типа контента и сырых байтов.
func EncodeImage(contentType string, data []byte) EncodedImage {
	return EncodedImage(NormalizeImageMediaType(contentType) + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// MediaType возвращает тип изображения.
func (e EncodedImage) MediaType() string {
	mediaType, _, _ := strings.Cut(string(e), ";")
	return mediaType
}

// Decode возвращает сырые байты изображения.
func (e EncodedImage) Decode() ([]byte, error) {
	_, payload, found := strings.Cut(string(e), ";base64,")
	if !found {
		return nil, ErrInvalidInput
	}
	return base64.StdEncoding.DecodeString(payload)
}
