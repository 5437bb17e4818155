package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/longrunning"

	"go.uber.org/zap"
)

// Ограничение размера скачиваемого изображения.
const maxImageBytes = 32 << 20

// mysticRequest - тело задачи Freepik Mystic. Все параметры, кроме промпта, фиксированы.
type mysticRequest struct {
	Prompt             string        `json:"prompt"`
	StructureReference string        `json:"structure_reference"`
	StructureStrength  int           `json:"structure_strength"`
	StyleReference     string        `json:"style_reference"`
	Adherence          int           `json:"adherence"`
	HDR                int           `json:"hdr"`
	Resolution         string        `json:"resolution"`
	AspectRatio        string        `json:"aspect_ratio"`
	Model              string        `json:"model"`
	CreativeDetailing  int           `json:"creative_detailing"`
	Engine             string        `json:"engine"`
	FixedGeneration    bool          `json:"fixed_generation"`
	FilterNSFW         bool          `json:"filter_nsfw"`
	Styling            mysticStyling `json:"styling"`
}

type mysticStyling struct {
	Styles     []any         `json:"styles"`
	Characters []any         `json:"characters"`
	Colors     []mysticColor `json:"colors"`
}

type mysticColor struct {
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
}

func newMysticRequest(prompt string) mysticRequest {
	return mysticRequest{
		Prompt:            prompt,
		StructureStrength: 50,
		Adherence:         50,
		HDR:               50,
		Resolution:        "2k",
		AspectRatio:       "square_1_1",
		Model:             "realism",
		CreativeDetailing: 33,
		Engine:            "automatic",
		FilterNSFW:        true,
		Styling: mysticStyling{
			Styles:     []any{},
			Characters: []any{},
			Colors:     []mysticColor{{Color: "#4A90E2", Weight: 0.5}},
		},
	}
}

// FreepikBackend - асинхронный бэкенд: отправка задачи, опрос, скачивание первого результата.
type FreepikBackend struct {
	logger     *zap.Logger
	tasks      longrunning.Client
	poll       longrunning.PollOptions
	downloader *http.Client
}

var _ Backend = (*FreepikBackend)(nil)

// NewFreepikBackend создает бэкенд поверх клиента долгих задач.
func NewFreepikBackend(logger *zap.Logger, tasks longrunning.Client, poll longrunning.PollOptions, downloadTimeout time.Duration) *FreepikBackend {
	if downloadTimeout <= 0 {
		downloadTimeout = 60 * time.Second
	}
	return &FreepikBackend{
		logger:     logger.Named("FreepikBackend"),
		tasks:      tasks,
		poll:       poll,
		downloader: &http.Client{Timeout: downloadTimeout},
	}
}

func (b *FreepikBackend) Name() string { return "freepik" }

func (b *FreepikBackend) Generate(ctx context.Context, prompt string) (domain.EncodedImage, error) {
	jobID, err := b.tasks.Submit(ctx, newMysticRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("submit failed: %w", err)
	}

	assets, err := b.tasks.AwaitCompletion(ctx, jobID, b.poll)
	if err != nil {
		return "", err
	}
	if len(assets) == 0 {
		return "", fmt.Errorf("%w: no assets returned for job %s", domain.ErrGenerationRejected, jobID)
	}

	b.logger.Debug("Downloading generated image", zap.String("job_id", jobID), zap.String("url", assets[0].URL))
	return b.download(ctx, assets[0].URL)
}

// download скачивает изображение и кодирует его с объявленным типом контента.
func (b *FreepikBackend) download(ctx context.Context, url string) (domain.EncodedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.downloader.Do(req)
	if err != nil {
		return "", fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("image host returned empty body")
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	return domain.EncodeImage(resp.Header.Get("Content-Type"), data), nil
}
