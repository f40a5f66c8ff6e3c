package wordpress

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

func TestClientPublish(t *testing.T) {
	var gotAuth, gotUserAgent string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   int64(412),
			"link": "https://blog.example.com/2025/03/alpha",
		})
	}))
	defer server.Close()

	site := &models.Site{
		URL:         server.URL + "/",
		WPUsername:  "editor",
		WPAppSecret: "abcd efgh ijkl",
	}

	client := NewClient(5*time.Second, "wp-seo-autopilot/test", logger.NewForTesting())
	result, err := client.Publish(context.Background(), site, &Post{
		Title:   "Alpha deep dive",
		Content: "<p>Body</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(412), result.PostID)
	assert.Equal(t, "https://blog.example.com/2025/03/alpha", result.URL)
	assert.Equal(t, "publish", gotBody["status"])

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("editor:abcd efgh ijkl"))
	assert.Equal(t, wantAuth, gotAuth)
	assert.Equal(t, "wp-seo-autopilot/test", gotUserAgent)
}

func TestClientPublishErrors(t *testing.T) {
	t.Run("api error surfaces code and message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "rest_cannot_create",
				"message": "Sorry, you are not allowed to create posts.",
			})
		}))
		defer server.Close()

		client := NewClient(5*time.Second, "wp-seo-autopilot/test", logger.NewForTesting())
		_, err := client.Publish(context.Background(), &models.Site{URL: server.URL}, &Post{Title: "T"})

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrPublishFailed)
		assert.Contains(t, err.Error(), "rest_cannot_create")
	})

	t.Run("missing post id rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(5*time.Second, "wp-seo-autopilot/test", logger.NewForTesting())
		_, err := client.Publish(context.Background(), &models.Site{URL: server.URL}, &Post{Title: "T"})
		assert.ErrorIs(t, err, models.ErrPublishFailed)
	})

	t.Run("unreachable site", func(t *testing.T) {
		client := NewClient(time.Second, "wp-seo-autopilot/test", logger.NewForTesting())
		_, err := client.Publish(context.Background(), &models.Site{URL: "http://127.0.0.1:1"}, &Post{Title: "T"})
		assert.ErrorIs(t, err, models.ErrPublishFailed)
	})
}
