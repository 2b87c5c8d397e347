// Package telemetry reports per-flush row counts to the run-tracking API.
// Reporting is best effort: a failed update is logged and never fails a flush.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/jwalitptl/health-export/pkg/logger"
)

// Reporter receives the per-table row counts of each committed batch.
type Reporter interface {
	ReportFlush(ctx context.Context, counts map[string]int)
}

// Noop discards all updates. Used when telemetry is disabled.
type Noop struct{}

func (Noop) ReportFlush(context.Context, map[string]int) {}

// RunInfo identifies one export run: which simulated state it covers, the
// target population and the reporting identifiers. Captured once at pipeline
// construction and attached to every update.
type RunInfo struct {
	RunID      string
	InstanceID string
	State      string
	Population int
}

type update struct {
	Counts     map[string]int `json:"counts"`
	Instance   string         `json:"instance"`
	State      string         `json:"state"`
	StateTotal int            `json:"state_total"`
}

// Client posts flush updates to `<base>/v1/runs/<runID>/updates`.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	run     RunInfo
	log     *logger.Logger
}

// NewClient builds a reporting client with bounded retries.
func NewClient(baseURL string, run RunInfo, log *logger.Logger) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil

	return &Client{
		http:    c,
		baseURL: baseURL,
		run:     run,
		log:     log,
	}
}

func (c *Client) ReportFlush(ctx context.Context, counts map[string]int) {
	body, err := json.Marshal(update{
		Counts:     counts,
		Instance:   c.run.InstanceID,
		State:      c.run.State,
		StateTotal: c.run.Population,
	})
	if err != nil {
		c.log.Error(err, "encoding telemetry update")
		return
	}

	url := fmt.Sprintf("%s/v1/runs/%s/updates", c.baseURL, c.run.RunID)
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		c.log.Error(err, "building telemetry request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(err, "sending telemetry update", "url", url)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.log.Warn("telemetry update rejected", "status", resp.StatusCode, "url", url)
	}
}
