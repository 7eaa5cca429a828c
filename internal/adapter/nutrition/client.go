// Package nutrition is the HTTP client for the remote nutrition lookup and
// menu recognition services.
package nutrition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"fitmate/internal/domain"
)

const tokenHeader = "x-client-token"

// Config configures a Client. VisionURL may be empty, in which case
// RecognizeMenu reports ErrNoVision.
type Config struct {
	BaseURL    string
	VisionURL  string
	Token      string
	Timeout    time.Duration
	MaxRetries uint64
	// InitialBackoff is the first retry delay; it doubles per attempt.
	InitialBackoff time.Duration
}

// ErrNoVision is returned by RecognizeMenu when no vision endpoint is set.
var ErrNoVision = errors.New("vision endpoint not configured")

// StatusError is a non-200 reply from a remote service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote status %d: %s", e.Code, e.Body)
}

// Client calls the nutrition and vision services. Transport failures and
// 5xx replies are retried with exponential backoff; everything else fails
// immediately.
type Client struct {
	api        *resty.Client
	vision     *resty.Client
	maxRetries uint64
	initial    time.Duration
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}

	c := &Client{
		api:        newResty(cfg.BaseURL, cfg.Token, cfg.Timeout),
		maxRetries: cfg.MaxRetries,
		initial:    cfg.InitialBackoff,
	}
	if cfg.VisionURL != "" {
		c.vision = newResty(cfg.VisionURL, cfg.Token, cfg.Timeout)
	}
	return c
}

func newResty(base, token string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader(tokenHeader, token).
		SetTimeout(timeout)
}

type nutritionResponse struct {
	Name         string  `json:"name"`
	CaloriesKcal float64 `json:"calories_kcal"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
	CarbsG       float64 `json:"carbs_g"`
}

type visionRequest struct {
	Image string `json:"image"`
}

type visionResponse struct {
	MenuName   string  `json:"menu_name"`
	Confidence float64 `json:"confidence"`
}

// Lookup fetches nutrition facts for query and returns them as an unsaved
// draft entry. A 404 maps to domain.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, query string) (*domain.FoodEntry, error) {
	var out nutritionResponse
	err := c.do(ctx, func() (*resty.Response, error) {
		return c.api.R().
			SetContext(ctx).
			SetQueryParam("query", query).
			ForceContentType("application/json").
			SetResult(&out).
			Get("/nutrition")
	})
	if err != nil {
		return nil, fmt.Errorf("nutrition lookup %q: %w", query, err)
	}
	if out.CaloriesKcal < 0 {
		return nil, fmt.Errorf("nutrition lookup %q: %w: negative calories", query, domain.ErrInvalidEntry)
	}

	name := strings.TrimSpace(out.Name)
	if name == "" {
		name = query
	}
	return &domain.FoodEntry{
		Name:     name,
		Calories: int(math.Round(out.CaloriesKcal)),
		Protein:  out.ProteinG,
		Fat:      out.FatG,
		Carbs:    out.CarbsG,
	}, nil
}

// RecognizeMenu sends the photo to the vision service and returns the dish
// name with the model's confidence.
func (c *Client) RecognizeMenu(ctx context.Context, image []byte) (string, float64, error) {
	if c.vision == nil {
		return "", 0, ErrNoVision
	}
	var out visionResponse
	body := visionRequest{Image: base64.StdEncoding.EncodeToString(image)}
	err := c.do(ctx, func() (*resty.Response, error) {
		return c.vision.R().
			SetContext(ctx).
			SetBody(&body).
			ForceContentType("application/json").
			SetResult(&out).
			Post("/vision-menu")
	})
	if err != nil {
		return "", 0, fmt.Errorf("menu recognition: %w", err)
	}
	if strings.TrimSpace(out.MenuName) == "" {
		return "", 0, fmt.Errorf("menu recognition: empty menu name")
	}
	return out.MenuName, out.Confidence, nil
}

// do runs call with retries on transport errors and 5xx replies.
func (c *Client) do(ctx context.Context, call func() (*resty.Response, error)) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initial
	exp.Multiplier = 2
	exp.Reset()

	op := func() error {
		resp, err := call()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		switch code := resp.StatusCode(); {
		case code == http.StatusOK:
			return nil
		case code == http.StatusNotFound:
			return backoff.Permanent(domain.ErrNotFound)
		case code >= 500:
			return &StatusError{Code: code, Body: resp.String()}
		default:
			return backoff.Permanent(&StatusError{Code: code, Body: resp.String()})
		}
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx))
}
