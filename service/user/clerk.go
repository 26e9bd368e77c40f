package user

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// IdentityClient deletes accounts at the external identity provider.
type IdentityClient interface {
	DeleteUser(userID string) error
}

// ClerkClient talks to the Clerk Backend API with the instance secret key.
type ClerkClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClerkClient(baseURL, secretKey string) *ClerkClient {
	return &ClerkClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// DeleteUser removes the account from Clerk. Any non-2xx response is treated
// as a failed deletion; the caller aborts the cascade in that case.
func (c *ClerkClient) DeleteUser(userID string) error {
	req, err := http.NewRequest("DELETE", fmt.Sprintf("%s/v1/users/%s", c.baseURL, userID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
