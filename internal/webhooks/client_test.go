package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/virshi/ai-visibility/internal/config"
)

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		AnalysisWebhookURL:       serverURL + "/analysis",
		PromptGenWebhookURL:      serverURL + "/prompts",
		RecommendationWebhookURL: serverURL + "/reco",
		ChatWebhookURL:           serverURL + "/chat",
		WebhookAuthSecret:        "shared-secret",
	}
}

func TestClient_TriggerAnalysis(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analysis", r.URL.Path)
		assert.Equal(t, "shared-secret", r.Header.Get("virshi-auth"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.TriggerAnalysis(context.Background(), AnalysisRequest{
		ProjectID:      "p1",
		Keywords:       []string{"best crm"},
		BrandName:      "Acme",
		UserEmail:      "user@acme.com",
		Provider:       "gpt-4o",
		Models:         []string{"gpt-4o"},
		OfficialAssets: []string{"acme.com"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "p1", gotBody["project_id"])
	assert.Equal(t, "Acme", gotBody["brand_name"])
	assert.Equal(t, []interface{}{"best crm"}, gotBody["keywords"])
	assert.Equal(t, []interface{}{"gpt-4o"}, gotBody["models"])
	assert.Equal(t, []interface{}{"acme.com"}, gotBody["official_assets"])
}

func TestClient_TriggerAnalysisNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow paused", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.TriggerAnalysis(context.Background(), AnalysisRequest{ProjectID: "p1"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_GeneratePrompts(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected []string
	}{
		{
			name:     "Bare array response",
			response: `["best crm for startups","top crm tools"]`,
			expected: []string{"best crm for startups", "top crm tools"},
		},
		{
			name:     "Wrapped object response",
			response: `{"prompts":["best crm"]}`,
			expected: []string{"best crm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.response)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))

			prompts, err := client.GeneratePrompts(context.Background(), PromptRequest{Brand: "Acme"})

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, prompts)
		})
	}
}

func TestClient_RequestRecommendation(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"output":"<html>report</html>"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	html, err := client.RequestRecommendation(context.Background(), RecommendationRequest{
		ProjectID: "p1",
		Category:  "Content Strategy",
	})

	assert.NoError(t, err)
	assert.Equal(t, "<html>report</html>", html)
	assert.Equal(t, "html_report", gotBody["request_type"])
	assert.NotEmpty(t, gotBody["timestamp"])
}

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":"Your SOV is trending up."}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	reply, err := client.Chat(context.Background(), ChatRequest{Query: "how is my brand doing?"})

	assert.NoError(t, err)
	assert.Equal(t, "Your SOV is trending up.", reply)
}

func TestClient_ChatErrorStatuses(t *testing.T) {
	status := http.StatusForbidden
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()

	_, err := client.Chat(ctx, ChatRequest{Query: "hi"})
	assert.ErrorContains(t, err, "access denied")

	status = http.StatusNotFound
	_, err = client.Chat(ctx, ChatRequest{Query: "hi"})
	assert.ErrorContains(t, err, "not found")
}
