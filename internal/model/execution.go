package model

import "time"

// Execution is one recorded attempt to run submitted code.
//
// Output and Error are independently optional — a run may produce both, either,
// or neither (a timeout or crash can yield neither). They are pointers so the
// absent case is explicit rather than an empty string that could also be real
// output. An Execution is immutable once created.
type Execution struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"` // external identity of the owner
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Output    *string   `json:"output,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
