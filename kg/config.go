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

// Config holds connection settings for the Neo4j backend.
type Config struct {
	// URI is the bolt endpoint, e.g. "bolt://localhost:7687".
	URI string

	// Username for basic auth.
	Username string

	// Password for basic auth. Empty leaves the graph backend disabled:
	// the client constructs, reports not-ready, and best-effort lookups
	// return empty results.
	Password string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithURI sets the bolt endpoint.
func WithURI(uri string) ConfigOption {
	return func(c *Config) {
		c.URI = uri
	}
}

// WithCredentials sets the basic-auth username and password.
func WithCredentials(username, password string) ConfigOption {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// DefaultConfig returns a Config pointing at a local Neo4j instance.
func DefaultConfig() *Config {
	return &Config{
		URI:      "bolt://localhost:7687",
		Username: "neo4j",
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Enabled reports whether credentials are set. A disabled config is valid;
// graph features simply stay off.
func (c *Config) Enabled() bool {
	return c.Password != ""
}
