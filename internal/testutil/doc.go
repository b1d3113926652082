// Package testutil provides shared helpers for agentbridge tests: wire frame
// builders for both encodings and an httptest-backed streaming server that
// writes frames with controllable chunk boundaries.
package testutil
