// Package models holds the typed records of the practice: owners, patients,
// sessions, appointments and costs, plus the read-side financial summaries.
package models

// Owner is a registered practice account (a psychologist).
type Owner struct {
	ID             int64
	Name           string
	Login          string
	PasswordDigest string
}

// Principal is the authenticated caller. It is decoded from the session
// token and passed explicitly into every registry and ledger operation.
type Principal struct {
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
}
