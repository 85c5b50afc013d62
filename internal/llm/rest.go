package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// restBase holds what every hand-written HTTP binding needs.
type restBase struct {
	provider   string
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
}

func newRESTBase(provider, baseURL, token, model string, client *http.Client) (restBase, error) {
	b := restBase{
		provider:   provider,
		baseURL:    strings.TrimSpace(baseURL),
		token:      strings.TrimSpace(token),
		model:      strings.TrimSpace(model),
		httpClient: client,
	}
	switch {
	case b.baseURL == "":
		return b, errors.New(provider + " base url is required")
	case b.token == "":
		return b, errors.New(provider + " token is required")
	case b.model == "":
		return b, errors.New(provider + " model is required")
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{}
	}
	return b, nil
}

// postJSON sends payload to url and decodes a 2xx body into out. For other
// statuses errMessage pulls the provider's message out of the raw body.
func (b restBase) postJSON(ctx context.Context, url string, header http.Header, payload, out any, errMessage func([]byte) string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return providerErr(b.provider, "marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return providerErr(b.provider, "create request", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: b.provider, Err: b.redact(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providerErr(b.provider, "read response", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &ProviderError{Provider: b.provider, Status: resp.StatusCode, Message: errMessage(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if msg := errMessage(raw); msg != "" {
			return providerErr(b.provider, msg, nil)
		}
		return providerErr(b.provider, "decode response", err)
	}
	return nil
}

// redact keeps the token out of transport errors that end up in responses
// and logs. Gemini carries it in the query string.
func (b restBase) redact(err error) error {
	msg := err.Error()
	if b.token == "" || !strings.Contains(msg, b.token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, b.token, "REDACTED"))
}

// nestedMessage reads {"error":{"message":...}}, the shape anthropic and
// gemini share.
func nestedMessage(raw []byte) string {
	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || body.Error == nil {
		return ""
	}
	return body.Error.Message
}
