// Package domain defines the core types of the open-interest monitoring
// backend and the interfaces that external collaborators (persistent store,
// signal bus, lock manager, token verifier) must satisfy. Nothing in this
// package performs I/O.
package domain

import "time"

// SampleSource tags where an OI sample came from.
type SampleSource string

const (
	// SourceSnapshot is the periodic bulk snapshot feed.
	SourceSnapshot SampleSource = "snapshot"
	// SourceRealtime is the high-frequency poller feed.
	SourceRealtime SampleSource = "realtime"
	// SourceSnapshotLegacy marks rows ingested by the pre-poller pipeline.
	SourceSnapshotLegacy SampleSource = "snapshot_legacy"
)

// AlertDirection is the direction of a detected open-interest move.
type AlertDirection string

const (
	DirectionUp   AlertDirection = "UP"
	DirectionDown AlertDirection = "DOWN"
)

// Valid reports whether the direction is one of the two accepted values.
// Anything else must be rejected before persistence.
func (d AlertDirection) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// OISample is one exchange-reported open-interest reading for a symbol.
// Samples are append-only: created by ingestion, never updated or deleted
// (except by archival to cold storage).
type OISample struct {
	ID              int64        `json:"id,omitempty"`
	Symbol          string       `json:"symbol"`
	Timestamp       time.Time    `json:"timestamp"`
	OpenInterest    float64      `json:"openInterest"`
	OpenInterestUsd *float64     `json:"openInterestUsd,omitempty"`
	MarkPrice       *float64     `json:"markPrice,omitempty"`
	Source          SampleSource `json:"source"`
}

// OIAlert is a detected threshold crossing, immutable once created.
type OIAlert struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	Direction   AlertDirection `json:"direction"`
	Baseline    float64        `json:"baseline"`
	Current     float64        `json:"current"`
	PctChange   float64        `json:"pctChange"`
	AbsChange   float64        `json:"absChange"`
	PriceChange *float64       `json:"priceChange,omitempty"`
	FundingRate *float64       `json:"fundingRate,omitempty"`
	Timeframe   string         `json:"timeframe,omitempty"`
	Source      string         `json:"source"`
	Timestamp   time.Time      `json:"timestamp"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// ItemError reports a validation failure for a single item in a batch. The
// index refers to the item's position in the submitted batch.
type ItemError struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol,omitempty"`
	Reason string `json:"reason"`
}

// BatchResult accumulates the outcome of a sample batch ingestion. Partial
// success is expected; Success is true only when no item errored.
type BatchResult struct {
	Success  bool        `json:"success"`
	Inserted int         `json:"inserted"`
	Skipped  int         `json:"skipped"`
	Errors   []ItemError `json:"errors,omitempty"`
}
