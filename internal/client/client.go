package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// GenericError is shown when a failed response carries no usable message.
const GenericError = "Failed to generate SOP"

const maxResponseBytes = 4 << 20

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type sopClient struct {
	endpoint   string
	httpClient *http.Client
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Content *string `json:"content"`
	Error   string  `json:"error"`
	Details string  `json:"details"`
}

// NewClient talks to the generation endpoint at url. A zero timeout means
// no client-side bound.
func NewClient(url string, timeout time.Duration) Client {
	return &sopClient{
		endpoint:   strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for non-2xx answers.
type StatusError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *StatusError) Error() string {
	return e.Message
}

func (o *sopClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", errors.Wrapf(err, "failed to marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.Wrapf(err, "failed to init request for %q", o.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to reach generation endpoint")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read response")
	}

	var body generateResponse
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Message:    lo.Ternary(decodeErr == nil && body.Error != "", body.Error, GenericError),
			Details:    body.Details,
		}
	}
	if decodeErr != nil {
		return "", errors.Wrapf(decodeErr, "failed to unmarshal response")
	}
	if body.Content == nil {
		return "", errors.Errorf("response does not contain content")
	}
	return *body.Content, nil
}
