// Package statefile persists an in-memory database to a JSON file so the
// command line tools can carry state between invocations.
package statefile
