package model

import "time"

// Star is a user's bookmark of a snippet (many-to-many).
//
// The (UserID, SnippetID) pair is deliberately not unique — the model allows
// duplicate stars and aggregation must tolerate them. A Star may also outlive
// its snippet: resolution of SnippetID can come back not-found and callers
// must treat that as a normal absence.
type Star struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SnippetID string    `json:"snippetId"`
	CreatedAt time.Time `json:"createdAt"`
}
