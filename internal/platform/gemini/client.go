package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/unibridge-backend/internal/observability"
	"github.com/yungbote/unibridge-backend/internal/platform/envutil"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

const providerName = "gemini"

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("GEMINI_API_KEY", envutil.String("GOOGLE_API_KEY", "")),
		Model:       envutil.String("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL:     envutil.String("GEMINI_BASE_URL", ""),
		Temperature: float32(envutil.Float("GEMINI_TEMPERATURE", 0.2)),
	}
}

// contentGenerator is the part of *genai.Models the client calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	log         *logger.Logger
	models      contentGenerator
	model       string
	temperature float32
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newWithGenerator(log, gc.Models, cfg), nil
}

func newWithGenerator(log *logger.Logger, models contentGenerator, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		log:         log.With("client", "GeminiClient"),
		models:      models,
		model:       model,
		temperature: cfg.Temperature,
	}
}

// GenerateText runs one single-turn generation with system as the system instruction.
func (c *Client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	start := time.Now()
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if strings.TrimSpace(system) != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(user), config)
	if err != nil {
		observability.Current().ObserveLLMRequest(providerName, c.model, "error", time.Since(start), 0, 0)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var in, out int
	if resp.UsageMetadata != nil {
		in = int(resp.UsageMetadata.PromptTokenCount)
		out = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	observability.Current().ObserveLLMRequest(providerName, c.model, "ok", time.Since(start), in, out)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
