// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RegisterRequest is the body of POST /api/v1/students.
type RegisterRequest struct {
	RollNo string `json:"roll_no"`
	Name   string `json:"name"`
	PIN    string `json:"pin"`
}

// StudentLoginRequest is the body of POST /api/v1/sessions/student.
type StudentLoginRequest struct {
	RollNo string `json:"roll_no"`
	PIN    string `json:"pin"`
}

// LoginRequest is the body of the vendor and admin login endpoints.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a new session token.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Role      model.Role `json:"role"`
	Name      string     `json:"name"`
	UserID    string     `json:"user_id,omitempty"`
	VendorID  int64      `json:"vendor_id,omitempty"`
}

// StudentResponse is a student account as shown to the student or an admin.
type StudentResponse struct {
	RollNo    string          `json:"roll_no"`
	Name      string          `json:"name"`
	Points    int             `json:"points"`
	Tier      model.KarmaTier `json:"karma_tier"`
	Banned    bool            `json:"banned"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToStudentResponse converts a User model to StudentResponse DTO.
func ToStudentResponse(u *model.User) StudentResponse {
	return StudentResponse{
		RollNo:    u.RollNo,
		Name:      u.Name,
		Points:    u.Points,
		Tier:      model.TierForPoints(u.Points),
		Banned:    u.IsBanned(),
		CreatedAt: u.CreatedAt,
	}
}

// ToStudentList converts users for the admin listing.
func ToStudentList(users []*model.User) []StudentResponse {
	out := make([]StudentResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToStudentResponse(u))
	}
	return out
}
