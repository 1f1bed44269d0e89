package shipper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPDoer is the subset of *http.Client transports need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Post sends body to url and returns the raw exchange. Network failures
// and timeouts surface as a CarrierError with CodeTransport.
func Post(ctx context.Context, client HTTPDoer, carrier, url string, headers map[string]string, body []byte) (Exchange, error) {
	ex := Exchange{Request: body}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ex, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return ex, NewCarrierError(carrier, CodeTransport, "request failed").
			WithCause(err).
			WithRaw(ex)
	}
	defer resp.Body.Close()

	ex.StatusCode = resp.StatusCode
	ex.Response, err = io.ReadAll(resp.Body)
	if err != nil {
		return ex, NewCarrierError(carrier, CodeTransport, "failed to read response").
			WithCause(err).
			WithRaw(ex)
	}
	return ex, nil
}

// UnexpectedStatus builds the error for a status the carrier protocol
// does not define.
func UnexpectedStatus(carrier string, ex Exchange) *CarrierError {
	return NewCarrierError(carrier, CodeUnexpectedStatus,
		fmt.Sprintf("unexpected status code %d from server", ex.StatusCode)).
		WithRaw(ex)
}
