// Package observability provides event logging, metrics calculation, and
// alerting for focusboard. Events are persisted as JSON Lines (JSONL);
// metrics are derived on demand from the event log and alerts from the
// current task collection.
package observability
