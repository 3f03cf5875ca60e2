// Package client talks to a running genesis server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hperssn/genesis/internal/document"
)

// Client submits documents to the persistence endpoint of a server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ document.Submitter = (*Client)(nil)

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type saveResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Submit posts p to /save-prd.
func (c *Client) Submit(ctx context.Context, p document.Payload) (document.Receipt, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return document.Receipt{}, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/save-prd", bytes.NewReader(body))
	if err != nil {
		return document.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return document.Receipt{}, fmt.Errorf("posting document: %w", err)
	}
	defer resp.Body.Close()

	var out saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return document.Receipt{}, fmt.Errorf("server returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		return document.Receipt{}, fmt.Errorf("server rejected document: %s", msg)
	}

	return document.Receipt{Filename: out.Filename}, nil
}
