package sdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"leadersync/core"
)

// HealthStatus describes the /health response.
type HealthStatus struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type searchResponse struct {
	Users []core.Entry `json:"users"`
	Query string       `json:"query"`
}

// maxBodyBytes bounds how much of a response is decoded.
const maxBodyBytes = 4 << 20

func decodeJSON(op string, resp *http.Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &core.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("request failed: %s", http.StatusText(resp.StatusCode)),
		}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(target); err != nil {
		return &core.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return nil
}
