package entity

import (
	"strings"
	"time"
)

type Channel string

const (
	ChannelSMS   Channel = "SMS"
	ChannelEmail Channel = "EMAIL"
)

func (c Channel) String() string {
	return string(c)
}

// ParseChannel normalises s; unknown values are returned as-is for the
// validator to reject.
func ParseChannel(s string) Channel {
	return Channel(strings.ToUpper(strings.TrimSpace(s)))
}

// RecipientInfo is what the notification needs besides the code itself.
type RecipientInfo struct {
	Channel   Channel
	FirstName string
	LastName  string
	Locale    string
}

// OtpRecord is the active code for an identifier. It is stored as two keys
// sharing one expiry: the hashed code and the cooldown marker.
type OtpRecord struct {
	Identifier    string
	HashedCode    string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	CooldownUntil time.Time
}

// Delivery is handed to the dispatcher after a code is stored.
type Delivery struct {
	Identifier string
	Code       string
	Recipient  RecipientInfo
}
