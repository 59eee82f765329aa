// Package prediction talks to an external text-generation deployment to
// forecast restocking needs from an inventory snapshot.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/httpclient"
	"github.com/tair/smart-inventory/pkg/logger"
)

const (
	service = "prediction"

	apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

	// NoPrediction is returned when the deployment generates nothing
	NoPrediction = "No prediction available"

	maxBodyBytes = 1 << 20
)

// Config holds gateway endpoints and credentials
type Config struct {
	TokenURL      string
	GenerationURL string
	APIKey        string
	Timeout       time.Duration
}

// Gateway exchanges an API key for a bearer token and requests a generated
// forecast. The token lives for a single call.
type Gateway struct {
	cfg        Config
	httpClient *http.Client
}

// NewGateway creates a new prediction gateway
func NewGateway(cfg Config) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Gateway{cfg: cfg, httpClient: httpclient.New(cfg.Timeout)}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type generationRequest struct {
	Parameters struct {
		PromptVariables struct {
			InventoryData string `json:"inventory_data"`
		} `json:"prompt_variables"`
	} `json:"parameters"`
}

type generationResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

// Predict returns the generated forecast. Every failure is a *domain.GatewayError.
func (g *Gateway) Predict(ctx context.Context, snapshot []domain.SnapshotEntry) (string, error) {
	if g.cfg.APIKey == "" {
		return "", gatewayError(errors.New("prediction API key is not configured"))
	}
	if g.cfg.GenerationURL == "" {
		return "", gatewayError(errors.New("prediction deployment is not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	token, err := g.fetchToken(ctx)
	if err != nil {
		return "", gatewayError(err)
	}

	text, err := g.generate(ctx, token, snapshot)
	if err != nil {
		return "", gatewayError(err)
	}

	logger.Debug(ctx).Int("entries", len(snapshot)).Msg("Prediction generated")
	return text, nil
}

func (g *Gateway) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", apiKeyGrantType)
	form.Set("apikey", g.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var body tokenResponse
	if err := g.do(req, &body); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("token exchange: response has no access_token")
	}
	return body.AccessToken, nil
}

func (g *Gateway) generate(ctx context.Context, token string, snapshot []domain.SnapshotEntry) (string, error) {
	if snapshot == nil {
		snapshot = []domain.SnapshotEntry{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var payload generationRequest
	payload.Parameters.PromptVariables.InventoryData = string(data)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.GenerationURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var out generationResponse
	if err := g.do(req, &out); err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}
	if len(out.Results) == 0 {
		return NoPrediction, nil
	}
	return out.Results[0].GeneratedText, nil
}

// do sends req and decodes a 2xx JSON body into out
func (g *Gateway) do(req *http.Request, out interface{}) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return httpclient.ClassifyError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

func gatewayError(cause error) error {
	return &domain.GatewayError{Service: service, Cause: cause}
}
