// Package core defines the shared domain types of the agentbridge client:
// canonical run events and their kinds, conversation entries with tool-call
// bookkeeping, run lifecycle status values and the contracts (EntryProcessor)
// that higher layers plug together. It has no transport or UI concerns.
package core
