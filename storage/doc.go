// Package storage defines the persistence contract for the literature
// evidence index. The badger subpackage provides the BadgerDB-backed
// implementation used in production and, in-memory, in tests.
package storage
