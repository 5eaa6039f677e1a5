// Package paymentprovider реализует REST-клиент платёжного провайдера:
// два вызова, request и verify, без автоматических повторов. Ошибка
// транспорта на любом из них поднимается вызывающему коду как явный отказ.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client клиент платёжного провайдера.
type Client struct {
	merchantID string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(merchantID, apiURL string) *Client {
	return &Client{
		merchantID: merchantID,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Request просит провайдера подготовить платёж и вернуть authority-токен
// вместе с адресом страницы оплаты.
func (c *Client) Request(ctx context.Context, amount int, callbackURL, description, email, mobile string) (*RequestResponse, error) {
	const op = "paymentprovider.Request"

	reqBody := RequestPayment{
		MerchantID:  c.merchantID,
		Amount:      amount,
		CallbackURL: callbackURL,
		Description: description,
		Email:       email,
		Mobile:      mobile,
	}
	var result RequestResponse
	if err := c.post(ctx, "/request", reqBody, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// Verify сверяет сумму и authority с провайдером и возвращает его вердикт.
func (c *Client) Verify(ctx context.Context, amount int, authority string) (*VerifyResponse, error) {
	const op = "paymentprovider.Verify"

	reqBody := VerifyPayment{
		MerchantID: c.merchantID,
		Amount:     amount,
		Authority:  authority,
	}
	var result VerifyResponse
	if err := c.post(ctx, "/verify", reqBody, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
