package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	extractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ged",
		Subsystem: "extraction",
		Name:      "duration_seconds",
		Help:      "Duration of AI metadata extraction requests",
	}, []string{"model"})

	extractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ged",
		Subsystem: "extraction",
		Name:      "failures_total",
		Help:      "Number of AI metadata extraction failures",
	}, []string{"model"})
)

// resultSchema type-checks the model response before it is decoded. The
// model is free to omit fields; it may not change their shape.
var resultSchema = jsonschema.MustCompileString("extraction.json", `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"summary": {"type": "string"},
		"category": {"type": "string"},
		"service": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`)

// OpenAIConfig defines configuration options for the OpenAI extractor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIExtractor implements Extractor against the OpenAI chat
// completion API, using a vision part when a scanned image is supplied.
type OpenAIExtractor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIExtractor builds a new extractor using the provided configuration.
func NewOpenAIExtractor(cfg OpenAIConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/sandiara-digital/ged-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIExtractor{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Extract sends the extraction request to OpenAI and parses the response.
// Any failure, including malformed model output, maps onto ErrNoResult.
func (e *OpenAIExtractor) Extract(parent context.Context, input ExtractionInput) (ExtractionResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.extract", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.Bool("has_image", len(input.ImageData) > 0),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractorSystemPrompt(),
			},
			buildUserMessage(input),
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, request)
	extractionDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		extractionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ExtractionResult{}, fmt.Errorf("openai extract: %v: %w", err, ErrNoResult)
	}

	if len(resp.Choices) == 0 {
		extractionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.SetStatus(codes.Error, "no choices returned")
		return ExtractionResult{}, fmt.Errorf("no choices returned from openai: %w", ErrNoResult)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := ParseExtractionResponse(content)
	if err != nil {
		extractionFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ExtractionResult{}, err
	}

	return result, nil
}

func extractorSystemPrompt() string {
	return "Tu es l'assistant de classement de la mairie de Sandiara. Réponds avec un objet JSON " +
		"contenant title (titre formel extrait ou généré), summary (résumé très court de l'objet), " +
		"category (Courrier Entrant, Courrier Sortant, Arrêté Municipal, Délibération, Note Interne, " +
		"Dossier Foncier ou Autre), service (service municipal concerné) et tags (liste de mots-clés)."
}

func buildUserMessage(input ExtractionInput) openai.ChatCompletionMessage {
	prompt := "Analyse cette image de document (scan) pour la mairie de Sandiara. Fais l'OCR et extrais les métadonnées pour le classement."
	if input.Text != "" {
		prompt = fmt.Sprintf("Analyse ce texte de document administratif pour la mairie de Sandiara : %q. Extrais les métadonnées.", input.Text)
	}

	if len(input.ImageData) == 0 {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}
	}

	mime := input.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(input.ImageData))

	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			},
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
		},
	}
}

// ParseExtractionResponse validates and decodes the model's JSON payload.
func ParseExtractionResponse(content string) (ExtractionResult, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return ExtractionResult{}, fmt.Errorf("parse extraction json: %v: %w", err, ErrNoResult)
	}
	if err := resultSchema.Validate(raw); err != nil {
		return ExtractionResult{}, fmt.Errorf("extraction schema: %v: %w", err, ErrNoResult)
	}

	var result ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return ExtractionResult{}, fmt.Errorf("decode extraction json: %v: %w", err, ErrNoResult)
	}

	result.Title = strings.TrimSpace(result.Title)
	result.Summary = strings.TrimSpace(result.Summary)
	result.Category = strings.TrimSpace(result.Category)
	result.Service = strings.TrimSpace(result.Service)

	tags := make([]string, 0, len(result.Tags))
	for _, tag := range result.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	result.Tags = tags

	return result, nil
}
