package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rgower/typeset/internal/structure"
	"github.com/rgower/typeset/internal/styles"
)

// Element is one rendered unit: the classified block, its role
// metadata, and the resolved style for its tier.
type Element struct {
	structure.Element
	Style styles.Descriptor `json:"style"`
}

// Document is the finished block stream pushed to the downstream
// renderer. The renderer owns all visual concerns; this payload only
// carries ordered content, role metadata, and resolved styles.
type Document struct {
	Title           string    `json:"title"`
	UsedAI          bool      `json:"used_ai"`
	SeparatorSymbol string    `json:"separator_symbol,omitempty"`
	Elements        []Element `json:"elements"`
}

// Client pushes finished documents to a rendering service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Push sends a finished document to POST /documents.
func (c *Client) Push(ctx context.Context, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("push document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push document %q: status %d: %s", doc.Title, resp.StatusCode, string(respBody))
	}
	return nil
}
