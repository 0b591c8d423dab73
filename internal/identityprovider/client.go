// Package identityprovider реализует HTTP-клиент внешнего провайдера
// аутентификации. Панель создаёт и удаляет аккаунты через него; выдача
// и проверка пользовательских учётных данных целиком на стороне провайдера.
package identityprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client клиент API провайдера аутентификации.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateAccount создаёт аккаунт с email и паролем, возвращает его uid.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	const op = "identityprovider.CreateAccount"
	req, err := c.newRequest(ctx, http.MethodPost, "/accounts", CreateAccountRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return "", fmt.Errorf("%s: provider rejected request: %s", op, errResp.Message)
		}
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var accountResp CreateAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&accountResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return accountResp.UID, nil
}

// DeleteAccount удаляет аккаунт провайдера по uid.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	const op = "identityprovider.DeleteAccount"
	req, err := c.newRequest(ctx, http.MethodDelete, "/accounts/"+uid, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}
