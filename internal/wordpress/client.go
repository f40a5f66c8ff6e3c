package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Post is the payload sent to the WordPress REST API
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	Status  string `json:"status"`
}

// PublishResult carries the remote identifiers of a created post
type PublishResult struct {
	PostID int64  `json:"id"`
	URL    string `json:"link"`
}

// Client publishes posts to WordPress sites over the REST API using
// Application Password authentication.
type Client struct {
	httpClient *http.Client
	userAgent  string
	log        *logger.Logger
}

// NewClient creates a new WordPress client. The user agent identifies this
// service in the sites' access logs.
func NewClient(timeout time.Duration, userAgent string, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		log:        log,
	}
}

// Publish creates a published post on the site and returns its remote id and
// URL. The site's stored application credentials authenticate the request.
func (c *Client) Publish(ctx context.Context, site *models.Site, post *Post) (*PublishResult, error) {
	if post.Status == "" {
		post.Status = "publish"
	}

	body, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	endpoint := strings.TrimRight(site.URL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.SetBasicAuth(site.WPUsername, site.WPAppSecret)

	c.log.Debug("Publishing post to WordPress",
		logger.String("site", site.URL),
		logger.String("title", post.Title),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail := readErrorDetail(resp.Body)
		return nil, fmt.Errorf("%w: site returned %d: %s", models.ErrPublishFailed, resp.StatusCode, detail)
	}

	var result PublishResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: unreadable response: %v", models.ErrPublishFailed, err)
	}
	if result.PostID == 0 {
		return nil, fmt.Errorf("%w: response missing post id", models.ErrPublishFailed)
	}

	return &result, nil
}

// readErrorDetail extracts the API error message, falling back to raw text
func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no detail"
	}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		if apiErr.Code != "" {
			return apiErr.Code + ": " + apiErr.Message
		}
		return apiErr.Message
	}

	return strings.TrimSpace(string(raw))
}
