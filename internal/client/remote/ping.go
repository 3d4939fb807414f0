package remote

import (
	"context"
	"fmt"
	"net/http"
)

// Ping checks backend reachability via the unauthenticated health endpoint.
// It satisfies the connectivity monitor's prober contract.
func (c *Client) Ping(ctx context.Context) error {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ping", nil, &payload); err != nil {
		return err
	}
	if payload.Status != "ok" {
		return fmt.Errorf("unexpected ping status %q", payload.Status)
	}
	return nil
}
