// Package memstore provides an in-memory implementation of the store and
// recording-backend interfaces. It backs the engine test suites and can
// serve as a scratch database for local dry runs.
package memstore
