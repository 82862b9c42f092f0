package recordlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/platform/circuit"
	"trichluc/pkg/platform/sentinel"
)

// HTTPLinker calls the records system over its JSON API. A circuit breaker
// sheds calls while the records system is down so allocations keep flowing;
// shed linkages go through the retrier like any other failure.
type HTTPLinker struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
}

func NewHTTP(baseURL string) *HTTPLinker {
	return &HTTPLinker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New("records"),
	}
}

func (l *HTTPLinker) FindByCode(ctx context.Context, code string) (*RecordMeta, error) {
	if l.breaker.IsOpen() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "records system circuit open")
	}

	endpoint := fmt.Sprintf("%s/records/%s", l.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build record lookup request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.breaker.RecordFailure()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "records system unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		l.breaker.RecordSuccess()
	case http.StatusNotFound:
		// A clean miss still proves the records system is up.
		l.breaker.RecordSuccess()
		return nil, sentinel.ErrNotFound
	default:
		l.breaker.RecordFailure()
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("records system returned %d", resp.StatusCode))
	}

	var meta RecordMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode record metadata: %w", err)
	}
	if meta.Code == "" {
		meta.Code = code
	}
	return &meta, nil
}

func (l *HTTPLinker) AttachIssuedNumber(ctx context.Context, code string, number int64) error {
	if l.breaker.IsOpen() {
		return dErrors.New(dErrors.CodeLinkageFailure, "records system circuit open")
	}

	payload, err := json.Marshal(map[string]int64{"issued_number": number})
	if err != nil {
		return fmt.Errorf("marshal attach payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/records/%s/excerpt-number", l.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build attach request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.breaker.RecordFailure()
		return dErrors.Wrap(err, dErrors.CodeLinkageFailure, "records system unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.breaker.RecordFailure()
		return dErrors.New(dErrors.CodeLinkageFailure,
			fmt.Sprintf("records system returned %d", resp.StatusCode))
	}
	l.breaker.RecordSuccess()
	return nil
}
