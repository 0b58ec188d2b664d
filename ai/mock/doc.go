// Package mock provides deterministic test doubles for the ai interfaces.
// The embedder produces stable FNV-hash-derived unit vectors, so similarity
// ordering is reproducible across test runs without any network access.
package mock
