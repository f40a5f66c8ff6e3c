package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/wordpress"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/llm"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/metrics"
)

// GenerationContentStore is the content persistence slice the generation
// service needs.
type GenerationContentStore interface {
	Create(ctx context.Context, c *models.Content) error
	MarkPublished(ctx context.Context, id uuid.UUID, remotePostID int64, remoteURL string, publishedAt time.Time) error
	MarkPublishError(ctx context.Context, id uuid.UUID, message string) error
}

// GenerationSiteStore resolves site credentials for inline publishing.
type GenerationSiteStore interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Site, error)
}

// PostPublisher publishes a post to a WordPress site.
type PostPublisher interface {
	Publish(ctx context.Context, site *models.Site, post *wordpress.Post) (*wordpress.PublishResult, error)
}

// GenerationService turns a topic into a stored content item via an LLM
// provider, optionally publishing it inline when a run requests immediate
// auto-publish. Implements the generator consumed by the run orchestrator.
type GenerationService struct {
	clients   map[llm.Provider]llm.Client
	defaultP  llm.Provider
	contents  GenerationContentStore
	sites     GenerationSiteStore
	publisher PostPublisher
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// SetMetrics enables Prometheus instrumentation of AI requests.
func (s *GenerationService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// NewGenerationService creates a new generation service. clients must contain
// at least the default provider.
func NewGenerationService(
	clients map[llm.Provider]llm.Client,
	defaultProvider llm.Provider,
	contents GenerationContentStore,
	sites GenerationSiteStore,
	publisher PostPublisher,
	log *logger.Logger,
) (*GenerationService, error) {
	if _, ok := clients[defaultProvider]; !ok {
		return nil, fmt.Errorf("no client configured for default provider %q", defaultProvider)
	}
	return &GenerationService{
		clients:   clients,
		defaultP:  defaultProvider,
		contents:  contents,
		sites:     sites,
		publisher: publisher,
		log:       log,
	}, nil
}

// generatedArticle is the JSON shape requested from the model
type generatedArticle struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Excerpt     string   `json:"excerpt"`
	SEOKeywords []string `json:"seo_keywords"`
}

// Generate produces and stores one article for the request's topic.
func (s *GenerationService) Generate(ctx context.Context, req *engine.GenerationRequest) (*engine.GenerationResult, error) {
	client := s.clientFor(req.Provider)
	provider := string(client.GetProvider())

	start := time.Now()
	resp, err := client.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: buildSystemPrompt(req),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserPrompt(req)},
		},
		Metadata: map[string]string{"user_id": req.UserID.String()},
	})
	if s.metrics != nil {
		s.metrics.AIRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.AIRequestsTotal.WithLabelValues(provider, status).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	article := parseArticle(resp.Content, req.Topic)
	cost := resp.Cost()

	content := &models.Content{
		ID:             uuid.New(),
		UserID:         req.UserID,
		SiteID:         req.SiteID,
		Title:          article.Title,
		Body:           article.Body,
		Excerpt:        article.Excerpt,
		SEOKeywords:    models.StringList(article.SEOKeywords),
		Status:         models.ContentStatusDraft,
		AIProvider:     string(client.GetProvider()),
		GenerationCost: cost,
	}
	if err := s.contents.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to store generated content: %w", err)
	}

	s.log.Info("Content generated",
		logger.String("content_id", content.ID.String()),
		logger.String("topic", req.Topic),
		logger.String("provider", string(client.GetProvider())),
		logger.Float64("cost", cost),
	)

	result := &engine.GenerationResult{
		ContentID: content.ID,
		Title:     article.Title,
		Cost:      cost,
	}

	if req.AutoPublish && req.PublishDelayHours == 0 {
		result.Published = s.publishInline(ctx, req, content)
	}

	return result, nil
}

// publishInline attempts the immediate publish. A failure here is not a
// generation failure: the content exists and the caller falls back to the
// publication queue.
func (s *GenerationService) publishInline(ctx context.Context, req *engine.GenerationRequest, content *models.Content) bool {
	site, err := s.sites.GetByID(ctx, req.UserID, req.SiteID)
	if err != nil {
		s.log.Warn("Inline publish skipped, site unavailable",
			logger.String("content_id", content.ID.String()),
			logger.Err(err),
		)
		return false
	}

	result, err := s.publisher.Publish(ctx, site, &wordpress.Post{
		Title:   content.Title,
		Content: content.Body,
		Excerpt: content.Excerpt,
	})
	if err != nil {
		s.log.Warn("Inline publish failed, deferring to queue",
			logger.String("content_id", content.ID.String()),
			logger.Err(err),
		)
		if markErr := s.contents.MarkPublishError(ctx, content.ID, err.Error()); markErr != nil {
			s.log.Error("Failed to record publish error", logger.Err(markErr))
		}
		return false
	}

	if err := s.contents.MarkPublished(ctx, content.ID, result.PostID, result.URL, time.Now().UTC()); err != nil {
		s.log.Error("Failed to stamp published content", logger.Err(err))
	}
	return true
}

func (s *GenerationService) clientFor(provider string) llm.Client {
	if c, ok := s.clients[llm.Provider(provider)]; ok {
		return c
	}
	return s.clients[s.defaultP]
}

func buildSystemPrompt(req *engine.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert SEO content writer producing publication-ready articles.")
	if req.BrandVoice != "" {
		b.WriteString(" Write in this brand voice: " + req.BrandVoice + ".")
	}
	if req.TargetAudience != "" {
		b.WriteString(" The target audience is: " + req.TargetAudience + ".")
	}
	if req.EEATCompliance {
		b.WriteString(" Follow E-E-A-T guidelines: demonstrate experience and expertise, cite authoritative sources, and avoid unverifiable claims.")
	}
	b.WriteString(` Respond with a single JSON object: {"title", "body", "excerpt", "seo_keywords"}. The body is HTML.`)
	return b.String()
}

func buildUserPrompt(req *engine.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an article about: %s.", req.Topic)
	if req.Keywords != "" {
		fmt.Fprintf(&b, " Target these SEO keywords: %s.", req.Keywords)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, " Tone: %s.", req.Tone)
	}
	wordCount := req.WordCount
	if wordCount <= 0 {
		wordCount = 800
	}
	fmt.Fprintf(&b, " Length: about %d words.", wordCount)
	if req.IncludeImages && req.ImageCount > 0 {
		fmt.Fprintf(&b, " Leave %d image placeholders as <!-- image: description --> comments", req.ImageCount)
		if req.ImageStyle != "" {
			fmt.Fprintf(&b, " described in a %s style", req.ImageStyle)
		}
		b.WriteString(".")
	}
	return b.String()
}

// parseArticle decodes the model's JSON reply, tolerating code fences and
// falling back to a plain-text split when the reply is not valid JSON.
func parseArticle(raw, topic string) *generatedArticle {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	article := &generatedArticle{}
	if err := json.Unmarshal([]byte(trimmed), article); err == nil && article.Title != "" && article.Body != "" {
		return article
	}

	// Plain-text fallback: first line is the title, the rest is the body.
	title, body, found := strings.Cut(trimmed, "\n")
	if !found || strings.TrimSpace(body) == "" {
		return &generatedArticle{Title: topic, Body: trimmed}
	}
	return &generatedArticle{
		Title: strings.TrimSpace(strings.TrimPrefix(title, "#")),
		Body:  strings.TrimSpace(body),
	}
}
