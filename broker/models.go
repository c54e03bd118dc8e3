package broker

import "time"

// Broker is the domain representation of a broker account.
// It mirrors the brokers table and should not include JSON annotations so it
// can be reused by different presentation layers. PasswordHash must never be
// serialized by any of them.
type Broker struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	PasswordHash string
	Role         string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleBroker is the role written on every account created through signup.
const RoleBroker = "broker"
