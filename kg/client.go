// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package kg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/hypograph/core"
)

// Client is the Neo4j-backed graph retriever. One client (and one underlying
// bolt driver) is shared per process; all methods are safe for concurrent use.
//
// A client built from a disabled Config has no driver: strict operations
// return core.ErrUnavailable and best-effort lookups return empty results.
type Client struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a graph client from the given configuration. Connection
// errors are deferred to first use; only a malformed URI fails here.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	c := &Client{
		logger: slog.Default().With("component", "kg"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if !config.Enabled() {
		c.logger.Warn("graph credentials not set, knowledge-graph features disabled")
		return c, nil
	}

	driver, err := neo4j.NewDriverWithContext(config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating graph driver: %w", err)
	}
	c.driver = driver

	return c, nil
}

// Connected reports whether a driver was configured. It says nothing about
// whether the backend is actually reachable; see Ready.
func (c *Client) Connected() bool {
	return c.driver != nil
}

// Ready reports whether the graph backend is reachable right now.
func (c *Client) Ready(ctx context.Context) bool {
	if c.driver == nil {
		return false
	}
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		c.logger.Warn("graph backend not reachable", "err", err)
		return false
	}
	return true
}

// HealthCheck runs a trivial query against the backend.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if c.driver == nil {
		return false
	}
	_, err := c.run(ctx, "RETURN 1", nil)
	return err == nil
}

// Close shuts down the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

// run executes a cypher query and converts every record into a plain map,
// with nodes, relationships and paths flattened to JSON-friendly values.
func (c *Client) run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if c.driver == nil {
		return nil, fmt.Errorf("%w: graph backend not configured", core.ErrUnavailable)
	}
	if params == nil {
		params = map[string]any{}
	}

	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("%w: graph query: %w", core.ErrInternal, err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		row := make(map[string]any, len(record.Keys))
		for key, value := range record.AsMap() {
			row[key] = convertValue(value)
		}
		records = append(records, row)
	}
	return records, nil
}
