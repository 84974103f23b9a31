package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/common/logger"
)

// Client submits lead records to the CMS backend's leads collection.
// Each successful call creates a new backend record; the session layer is
// responsible for preventing duplicate submits.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     logger.Logger
}

// Submission is the acknowledged result of a successful submit. The
// backend's envelope is parsed only far enough to confirm the created
// record.
type Submission struct {
	ID  int64                  `json:"id"`
	Raw map[string]interface{} `json:"-"`
}

// backendErrorEnvelope mirrors the backend's error response body.
type backendErrorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
		Details struct {
			Errors []struct {
				Path    []string `json:"path"`
				Message string   `json:"message"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

func NewClient(baseURL, apiToken string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "leads-client"}),
	}
}

// Submit normalizes and validates the record, wraps it in the backend
// envelope, and issues a single POST. Every failure path returns a
// *stderrors.StandardError with a distinct, user-displayable message; no
// automatic retry on any of them.
func (c *Client) Submit(ctx context.Context, record *Record) (*Submission, error) {
	record.Normalize()

	if errs := record.Validate(); len(errs) > 0 {
		return nil, stderrors.NewLeadValidationFailedError(AsFieldErrors(errs))
	}

	payload := record.WirePayload()
	if err := CheckWirePayload(payload); err != nil {
		return nil, err
	}

	body, err := marshalEnvelope(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead envelope: %w", err)
	}

	url := fmt.Sprintf("%s/api/leads", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No HTTP response at all: DNS, refused connection, timeout.
		c.logger.WithError(err).Warn("lead submission transport failure", nil)
		return nil, stderrors.NewNetworkUnreachableError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stderrors.NewNetworkUnreachableError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return parseSubmission(respBody), nil
	}

	return nil, c.classifyFailure(resp.StatusCode, respBody)
}

func parseSubmission(body []byte) *Submission {
	// Success needs no deep parse; the record id is pulled out when the
	// backend includes one.
	var parsed struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &parsed)

	var raw map[string]interface{}
	_ = json.Unmarshal(body, &raw)

	return &Submission{ID: parsed.Data.ID, Raw: raw}
}

func (c *Client) classifyFailure(status int, body []byte) error {
	var envelope backendErrorEnvelope
	_ = json.Unmarshal(body, &envelope)

	c.logger.Warn("lead submission rejected", map[string]interface{}{
		"status":  status,
		"backend": envelope.Error.Message,
	})

	switch {
	case status == http.StatusForbidden:
		return stderrors.NewPermissionDeniedError(envelope.Error.Message)
	case status >= 500:
		return stderrors.NewServerFaultError(status, envelope.Error.Message)
	default:
		var fieldErrors []stderrors.FieldError
		for _, fe := range envelope.Error.Details.Errors {
			fieldErrors = append(fieldErrors, stderrors.FieldError{
				Path:    strings.Join(fe.Path, "."),
				Message: fe.Message,
			})
		}
		return stderrors.NewBackendValidationFailedError(envelope.Error.Message, fieldErrors)
	}
}
