package domain

import "time"

// Account is the slice of the user's profile this service touches.
// The profile itself belongs to the BaaS.
type Account struct {
	ID            string    `json:"id"`
	WalletBalance int64     `json:"wallet_balance"`
	UpdatedAt     time.Time `json:"updated_at"`
}
