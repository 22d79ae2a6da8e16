// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Identity comes from the external identity provider: UserID is the provider's
// opaque subject string and is globally unique — a user is created at most once
// per external identity, by the webhook-driven sync. We still generate our own
// internal string ID (xid) so primary keys aren't tied to a third party's
// numbering scheme.
//
// ProSince and the billing identifiers are set only by a billing-tier
// transition and are absent for free-tier users.
type User struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"` // external identity provider subject
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	IsPro        bool       `json:"isPro"`
	ProSince     *time.Time `json:"proSince,omitempty"`
	LSCustomerID string     `json:"lsCustomerId,omitempty"`
	LSOrderID    string     `json:"lsOrderId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
