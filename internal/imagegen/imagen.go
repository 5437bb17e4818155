package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"cyoa-server/internal/domain"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultImagenModel - модель Imagen по умолчанию.
const DefaultImagenModel = "imagen-4.0-generate-001"

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// imageModels - часть genai.Models, используемая бэкендом.
type imageModels interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ImagenBackend - синхронный бэкенд Google Imagen.
type ImagenBackend struct {
	logger *zap.Logger
	models imageModels
	model  string
}

var _ Backend = (*ImagenBackend)(nil)

// NewImagenBackend создает клиента genai один раз на время жизни процесса.
func NewImagenBackend(ctx context.Context, logger *zap.Logger, apiKey, model string) (*ImagenBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: google api key is not set", domain.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newImagenBackend(logger, client.Models, model), nil
}

func newImagenBackend(logger *zap.Logger, models imageModels, model string) *ImagenBackend {
	if model == "" {
		model = DefaultImagenModel
	}
	return &ImagenBackend{
		logger: logger.Named("ImagenBackend"),
		models: models,
		model:  model,
	}
}

func (b *ImagenBackend) Name() string { return "imagen" }

func (b *ImagenBackend) Generate(ctx context.Context, prompt string) (domain.EncodedImage, error) {
	resp, err := b.models.GenerateImages(ctx, b.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return "", fmt.Errorf("imagen request failed: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return "", fmt.Errorf("%w: imagen returned no images", domain.ErrGenerationRejected)
	}

	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		reason := ""
		if generated != nil {
			reason = generated.RAIFilteredReason
		}
		return "", fmt.Errorf("%w: imagen returned an empty image %s", domain.ErrGenerationRejected, reason)
	}

	data, err := ensurePNG(generated.Image.ImageBytes)
	if err != nil {
		return "", err
	}
	return domain.EncodeImage("image/png", data), nil
}

// ensurePNG перекодирует изображение в PNG, если оно пришло в другом формате.
func ensurePNG(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, pngSignature) {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
