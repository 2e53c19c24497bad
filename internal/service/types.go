// Package service contains the session plumbing of the planner desk: the
// change event bus, remembered file paths and the edit journal record.
package service

import "time"

// JournalEntry is one mutation attempt against the planner.
// Huma reads the tags for the journal listing schema.
type JournalEntry struct {
	At         time.Time `json:"at" doc:"When the attempt finished"`
	Operation  string    `json:"operation" doc:"Mutation kind" example:"add-request"`
	Courier    int64     `json:"courier" doc:"Courier the edit applied to (0 when global)" example:"1"`
	Outcome    string    `json:"outcome" enum:"ok,infeasible,failed,precondition,deferred,busy" doc:"Outcome class" example:"ok"`
	Detail     string    `json:"detail,omitempty" doc:"Planner error body or precondition detail"`
	DurationMS int64     `json:"durationMs" doc:"Wall time of the attempt in milliseconds" example:"42"`
}

// JournalStat counts attempts per operation and outcome.
type JournalStat struct {
	Operation     string  `json:"operation" example:"add-request"`
	Outcome       string  `json:"outcome" example:"infeasible"`
	Count         int64   `json:"count"`
	AvgDurationMS float64 `json:"avgDurationMs" doc:"Mean wall time in milliseconds"`
}
