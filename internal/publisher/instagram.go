package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultGraphBase = "https://graph.facebook.com/v18.0"

// APIError carries a Graph API failure with whatever message the API
// attached.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph API status %d", e.StatusCode)
	}
	return fmt.Sprintf("graph API status %d: %s", e.StatusCode, e.Message)
}

// GraphClient speaks the Instagram Graph two-phase publish protocol: a
// media container is created first, then published by creation id.
type GraphClient struct {
	baseURL string
	pageID  string
	token   string
	client  *http.Client
}

func NewGraphClient(pageID, token string, client *http.Client) *GraphClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &GraphClient{
		baseURL: defaultGraphBase,
		pageID:  pageID,
		token:   token,
		client:  client,
	}
}

type graphErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyToken checks the access token before any publish attempt, so a
// revoked token fails fast instead of mid-cascade.
func (c *GraphClient) VerifyToken(ctx context.Context) error {
	url := fmt.Sprintf("%s/me?access_token=%s", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	defer resp.Body.Close()

	var body graphErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "invalid access token: " + body.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

// PublishImage runs both phases for a remotely hosted image and returns
// the published post id.
func (c *GraphClient) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	creationID, err := c.createContainer(ctx, imageURL, caption)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	postID, err := c.publishContainer(ctx, creationID)
	if err != nil {
		return "", fmt.Errorf("publish failed: %w", err)
	}
	return postID, nil
}

func (c *GraphClient) createContainer(ctx context.Context, imageURL, caption string) (string, error) {
	return c.post(ctx, c.baseURL+"/"+c.pageID+"/media", map[string]string{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": c.token,
	})
}

func (c *GraphClient) publishContainer(ctx context.Context, creationID string) (string, error) {
	return c.post(ctx, c.baseURL+"/"+c.pageID+"/media_publish", map[string]string{
		"creation_id":  creationID,
		"access_token": c.token,
	})
}

// post sends a JSON body and expects {"id": "..."} back.
func (c *GraphClient) post(ctx context.Context, url string, payload map[string]string) (string, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode graph response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.ID == "" {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if result.Error != nil {
			apiErr.Message = result.Error.Message
		}
		return "", apiErr
	}
	return result.ID, nil
}
