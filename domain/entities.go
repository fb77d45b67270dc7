package domain

import "time"

// Role is the authorization role of a user
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAuthor Role = "AUTHOR"
	RoleUser   Role = "USER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleUser:
		return true
	}
	return false
}

// Status is the account status of a user
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusFreeze Status = "FREEZE"
)

// User represents a user in the system.
// Password and RandToken never leave the service layer.
type User struct {
	ID              uint
	Email           string
	Username        string
	FirstName       *string
	LastName        *string
	Phone           *string
	Password        string
	Role            Role
	Status          Status
	ErrorLoginCount int
	RandToken       string
	LastLogin       *time.Time
	Image           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserChanges is a partial update of a user row. UpdatedAt is always written.
type UserChanges struct {
	Password             *string
	Role                 *Role
	Status               *Status
	ErrorLoginCount      *int
	IncrementErrorLogins bool
	RandToken            *string
	LastLogin            *time.Time
	UpdatedAt            time.Time
}

// Otp is the verification record shared by the registration and password reset
// flows. There is at most one row per email.
type Otp struct {
	ID            uint
	Email         string
	OTP           string // bcrypt hash of the six digit code
	RememberToken string
	VerifyToken   *string
	Error         int
	Count         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Verified reports whether the OTP of this row was already matched
func (o *Otp) Verified() bool {
	return o.VerifyToken != nil && *o.VerifyToken != ""
}

// OtpChanges is a partial update of an otp row. UpdatedAt is always written.
type OtpChanges struct {
	OTP              *string
	RememberToken    *string
	VerifyToken      *string
	ClearVerifyToken bool
	Error            *int
	IncrementError   bool
	Count            *int
	IncrementCount   bool
	UpdatedAt        time.Time
}

// OtpIssue is returned when a code is generated. Code is the plaintext OTP and
// must only be handed to the delivery channel.
type OtpIssue struct {
	Email         string
	Code          string
	RememberToken string
}

// TokenPair holds freshly signed session tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult represents a successful sign-in or account creation
type AuthResult struct {
	User   *User
	Tokens TokenPair
}

// Identity is the outcome of request authentication. RenewedAccessToken is set
// when the access token had to be reissued from the refresh token.
type Identity struct {
	UserID             uint
	RenewedAccessToken string
}

// AccessClaims is the payload of an access token
type AccessClaims struct {
	UserID uint
}

// RefreshClaims is the payload of a refresh token
type RefreshClaims struct {
	UserID uint
	Email  string
}

// SameDay reports whether a and b fall on the same calendar date in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
