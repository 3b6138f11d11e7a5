// Package models defines the data exchanged between the vault server and
// its clients.
package models

// User is a registered vault user.
type User struct {
	// Login is the certificate Common Name of the user.
	Login string `json:"login"`
	// UID is the user's 1-indexed slot in the vault.
	UID int `json:"uid"`
}

// Pair is a hint-password pair as sent by clients.
type Pair struct {
	Hint     string `json:"hint"`
	Password string `json:"password"`
}

// Passwords lists every password stored under one hint.
type Passwords struct {
	Hint      string   `json:"hint"`
	Passwords []string `json:"passwords"`
}

// Stats reports the caller's counters and the vault totals.
type Stats struct {
	UID            int `json:"uid"`
	Hints          int `json:"hints"`
	RemainingHints int `json:"remaining_hints"`
	Entries        int `json:"entries"`
	VaultUsers     int `json:"vault_users"`
	VaultHints     int `json:"vault_hints"`
	VaultEntries   int `json:"vault_entries"`
}

// Session identifies an open sequential session.
type Session struct {
	ID string `json:"id"`
}

// Record is one record read from a session.
type Record struct {
	Hint     string `json:"hint"`
	Password string `json:"password"`
}

// Registration is the response to a successful registration.
type Registration struct {
	UID  int    `json:"uid"`
	Cert string `json:"cert"`
	Key  string `json:"key"`
}
