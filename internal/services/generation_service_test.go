package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/wordpress"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/llm"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

type mockLLMClient struct {
	chatFn   func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
	provider llm.Provider
}

func (m *mockLLMClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return m.chatFn(ctx, req)
}

func (m *mockLLMClient) GetProvider() llm.Provider { return m.provider }
func (m *mockLLMClient) Close() error              { return nil }

type mockContentStore struct {
	createFn           func(ctx context.Context, c *models.Content) error
	markPublishedFn    func(ctx context.Context, id uuid.UUID, remotePostID int64, remoteURL string, publishedAt time.Time) error
	markPublishErrorFn func(ctx context.Context, id uuid.UUID, message string) error
}

func (m *mockContentStore) Create(ctx context.Context, c *models.Content) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockContentStore) MarkPublished(ctx context.Context, id uuid.UUID, remotePostID int64, remoteURL string, publishedAt time.Time) error {
	if m.markPublishedFn != nil {
		return m.markPublishedFn(ctx, id, remotePostID, remoteURL, publishedAt)
	}
	return nil
}

func (m *mockContentStore) MarkPublishError(ctx context.Context, id uuid.UUID, message string) error {
	if m.markPublishErrorFn != nil {
		return m.markPublishErrorFn(ctx, id, message)
	}
	return nil
}

type mockSiteStore struct {
	getFn func(ctx context.Context, userID, id uuid.UUID) (*models.Site, error)
}

func (m *mockSiteStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Site, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return &models.Site{ID: id, UserID: userID, URL: "https://blog.example.com"}, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, site *models.Site, post *wordpress.Post) (*wordpress.PublishResult, error)
}

func (m *mockPublisher) Publish(ctx context.Context, site *models.Site, post *wordpress.Post) (*wordpress.PublishResult, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, site, post)
	}
	return &wordpress.PublishResult{PostID: 99, URL: "https://blog.example.com/p/99"}, nil
}

func jsonReply(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Content:  content,
		Model:    "gpt-4o-mini",
		Provider: llm.ProviderOpenAI,
		Usage:    &llm.TokenUsage{PromptTokens: 500, CompletionTokens: 1500, TotalTokens: 2000},
	}
}

func newGenerationService(t *testing.T, client llm.Client, contents GenerationContentStore, sites GenerationSiteStore, publisher PostPublisher) *GenerationService {
	t.Helper()
	svc, err := NewGenerationService(
		map[llm.Provider]llm.Client{llm.ProviderOpenAI: client},
		llm.ProviderOpenAI,
		contents, sites, publisher,
		logger.NewForTesting(),
	)
	require.NoError(t, err)
	return svc
}

func TestGenerationServiceGenerate(t *testing.T) {
	client := &mockLLMClient{
		provider: llm.ProviderOpenAI,
		chatFn: func(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			assert.Contains(t, req.Messages[0].Content, "Kubernetes cost tuning")
			assert.Contains(t, req.Messages[0].Content, "keywords: k8s, finops")
			assert.Contains(t, req.SystemPrompt, "E-E-A-T")
			return jsonReply(`{"title":"Taming k8s spend","body":"<p>Article</p>","excerpt":"Short","seo_keywords":["k8s","finops"]}`), nil
		},
	}

	var stored *models.Content
	contents := &mockContentStore{
		createFn: func(_ context.Context, c *models.Content) error {
			stored = c
			return nil
		},
	}

	svc := newGenerationService(t, client, contents, &mockSiteStore{}, &mockPublisher{})
	result, err := svc.Generate(context.Background(), &engine.GenerationRequest{
		UserID:         uuid.New(),
		SiteID:         uuid.New(),
		Topic:          "Kubernetes cost tuning",
		Keywords:       "k8s, finops",
		WordCount:      1200,
		EEATCompliance: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Taming k8s spend", result.Title)
	assert.False(t, result.Published)
	assert.Greater(t, result.Cost, 0.0)

	require.NotNil(t, stored)
	assert.Equal(t, models.ContentStatusDraft, stored.Status)
	assert.Equal(t, "<p>Article</p>", stored.Body)
	assert.Equal(t, models.StringList{"k8s", "finops"}, stored.SEOKeywords)
	assert.InDelta(t, result.Cost, stored.GenerationCost, 1e-9)
}

func TestGenerationServiceInlinePublish(t *testing.T) {
	client := &mockLLMClient{
		provider: llm.ProviderOpenAI,
		chatFn: func(_ context.Context, _ *llm.ChatRequest) (*llm.ChatResponse, error) {
			return jsonReply(`{"title":"T","body":"<p>B</p>","excerpt":"E"}`), nil
		},
	}

	t.Run("success stamps remote id", func(t *testing.T) {
		var stampedID int64
		contents := &mockContentStore{
			markPublishedFn: func(_ context.Context, _ uuid.UUID, remotePostID int64, _ string, _ time.Time) error {
				stampedID = remotePostID
				return nil
			},
		}

		svc := newGenerationService(t, client, contents, &mockSiteStore{}, &mockPublisher{})
		result, err := svc.Generate(context.Background(), &engine.GenerationRequest{
			UserID:      uuid.New(),
			SiteID:      uuid.New(),
			Topic:       "T",
			AutoPublish: true,
		})
		require.NoError(t, err)
		assert.True(t, result.Published)
		assert.Equal(t, int64(99), stampedID)
	})

	t.Run("publish failure marks content and reports unpublished", func(t *testing.T) {
		var recordedErr string
		contents := &mockContentStore{
			markPublishErrorFn: func(_ context.Context, _ uuid.UUID, message string) error {
				recordedErr = message
				return nil
			},
		}
		publisher := &mockPublisher{
			publishFn: func(_ context.Context, _ *models.Site, _ *wordpress.Post) (*wordpress.PublishResult, error) {
				return nil, errors.New("credentials rejected")
			},
		}

		svc := newGenerationService(t, client, contents, &mockSiteStore{}, publisher)
		result, err := svc.Generate(context.Background(), &engine.GenerationRequest{
			UserID:      uuid.New(),
			SiteID:      uuid.New(),
			Topic:       "T",
			AutoPublish: true,
		})
		require.NoError(t, err)
		assert.False(t, result.Published)
		assert.Contains(t, recordedErr, "credentials rejected")
	})

	t.Run("delayed publish never publishes inline", func(t *testing.T) {
		publisher := &mockPublisher{
			publishFn: func(_ context.Context, _ *models.Site, _ *wordpress.Post) (*wordpress.PublishResult, error) {
				t.Fatal("publish must not run for delayed auto-publish")
				return nil, nil
			},
		}

		svc := newGenerationService(t, client, &mockContentStore{}, &mockSiteStore{}, publisher)
		result, err := svc.Generate(context.Background(), &engine.GenerationRequest{
			UserID:            uuid.New(),
			SiteID:            uuid.New(),
			Topic:             "T",
			AutoPublish:       true,
			PublishDelayHours: 6,
		})
		require.NoError(t, err)
		assert.False(t, result.Published)
	})
}

func TestGenerationServiceProviderFailure(t *testing.T) {
	client := &mockLLMClient{
		provider: llm.ProviderOpenAI,
		chatFn: func(_ context.Context, _ *llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("rate limited")
		},
	}

	created := false
	contents := &mockContentStore{
		createFn: func(_ context.Context, _ *models.Content) error {
			created = true
			return nil
		},
	}

	svc := newGenerationService(t, client, contents, &mockSiteStore{}, &mockPublisher{})
	_, err := svc.Generate(context.Background(), &engine.GenerationRequest{Topic: "T"})

	require.Error(t, err)
	assert.False(t, created)
}

func TestParseArticle(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		a := parseArticle("```json\n{\"title\":\"T\",\"body\":\"B\"}\n```", "topic")
		assert.Equal(t, "T", a.Title)
		assert.Equal(t, "B", a.Body)
	})

	t.Run("plain text falls back to first line title", func(t *testing.T) {
		a := parseArticle("# My Heading\nThe body text.", "topic")
		assert.Equal(t, "My Heading", a.Title)
		assert.Equal(t, "The body text.", a.Body)
	})

	t.Run("single line uses topic as title", func(t *testing.T) {
		a := parseArticle("Just one paragraph.", "Fallback topic")
		assert.Equal(t, "Fallback topic", a.Title)
		assert.Equal(t, "Just one paragraph.", a.Body)
	})
}
