// Package model defines domain entities for the application.
package model

import "time"

// Karma bounds and thresholds.
const (
	// DefaultKarma is the karma a student starts with. It is also the
	// conventional ceiling: nothing awards karma, and the store only enforces the floor of 0.
	DefaultKarma = 100
	// BanThreshold is the karma below which a student may not log in or order.
	BanThreshold = 40
	// NoShowPenalty is deducted when an order is marked as a no-show.
	NoShowPenalty = 10
)

// KarmaTier is the display band of a karma score.
type KarmaTier string

const (
	KarmaTierGreen  KarmaTier = "green"
	KarmaTierYellow KarmaTier = "yellow"
	KarmaTierRed    KarmaTier = "red"
)

// User represents a registered student.
type User struct {
	RollNo    string    `json:"roll_no"`
	Name      string    `json:"name"`
	PINHash   string    `json:"-"` // Never serialize
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBanned reports whether the student's karma is below the ban threshold.
func (u *User) IsBanned() bool {
	return u.Points < BanThreshold
}

// TierForPoints maps a karma score to its display band.
func TierForPoints(points int) KarmaTier {
	switch {
	case points > 80:
		return KarmaTierGreen
	case points < 50:
		return KarmaTierRed
	default:
		return KarmaTierYellow
	}
}
