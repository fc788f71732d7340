package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FacilitatorClient talks to the remote verification facilitator over
// HTTP/JSON.
type FacilitatorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFacilitatorClient(baseURL, apiKey string) *FacilitatorClient {
	return &FacilitatorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Per-call deadlines come from the context; this is a hard cap
			// so a dead facilitator cannot pin a connection forever.
			Timeout: 30 * time.Second,
		},
	}
}

type verifyPayload struct {
	Proof        string                   `json:"proof"`
	Requirements VerificationRequirements `json:"requirements"`
}

func (c *FacilitatorClient) Verify(ctx context.Context, proof string, reqs VerificationRequirements) (*VerifyResult, error) {
	var result VerifyResult
	if err := c.post(ctx, "/verify", verifyPayload{Proof: proof, Requirements: reqs}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FacilitatorClient) Settle(ctx context.Context, proof string, reqs VerificationRequirements) (*SettleResult, error) {
	var result SettleResult
	if err := c.post(ctx, "/settle", verifyPayload{Proof: proof, Requirements: reqs}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FacilitatorClient) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	var result TransferResult
	if err := c.post(ctx, "/transfer", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FacilitatorClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("facilitator %s call: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("facilitator %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
