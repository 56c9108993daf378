// Package openai implements the embeddings provider against an
// OpenAI-compatible API (OpenAI itself, OpenRouter, or any gateway exposing
// the same /embeddings endpoint).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Simon-McIntosh/nucleai/internal/config"
	"github.com/Simon-McIntosh/nucleai/internal/errs"
)

type Provider struct {
	client     *resty.Client
	model      string
	dimensions int
}

// New creates a Provider from the embedding settings in cfg.
func New(cfg *config.Config) *Provider {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.EmbedBaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.EmbedAPIKey).
		SetTimeout(60 * time.Second)

	return &Provider{client: c, model: cfg.EmbedModel, dimensions: cfg.EmbedDimensions}
}

type embedRequest struct {
	Input      string `json:"input"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates a dense vector for the given text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validationf(
			"provide a non-empty text to embed",
			"text to embed is empty")
	}

	reqBody := embedRequest{Input: text, Model: p.model, Dimensions: p.dimensions}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/embeddings")
	if err != nil {
		return nil, errs.Wrap(errs.KindConnectivity, err,
			"embeddings endpoint unreachable",
			"check network connection and NUCLEAI_EMBED_BASE_URL")
	}
	if resp.StatusCode() != http.StatusOK {
		kind := errs.KindData
		if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
			kind = errs.KindAuth
		}
		return nil, errs.New(kind,
			fmt.Sprintf("embeddings request failed with status %d: %s", resp.StatusCode(), resp.String()),
			"check NUCLEAI_EMBED_API_KEY and the configured model name")
	}

	var out embedResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, errs.Wrap(errs.KindData, err,
			"cannot decode embeddings response",
			"the endpoint may not be OpenAI-compatible; check NUCLEAI_EMBED_BASE_URL")
	}
	if out.Error != nil {
		return nil, errs.Dataf(
			"check NUCLEAI_EMBED_API_KEY and the configured model name",
			"embeddings API error: %s", out.Error.Message)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errs.Dataf(
			"the model may not support the requested dimensions",
			"embeddings API returned no vector")
	}

	vec := make([]float32, len(out.Data[0].Embedding))
	for i, v := range out.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
