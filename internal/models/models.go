package models

import "time"

type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	Image         *string   `json:"image" db:"image"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type Session struct {
	ID        string    `json:"id" db:"id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Token     string    `json:"token" db:"token"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	IPAddress *string   `json:"ipAddress" db:"ip_address"`
	UserAgent *string   `json:"userAgent" db:"user_agent"`
	UserID    string    `json:"userId" db:"user_id"`
}

// * IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Account is a linked credential. For email/password sign-up the provider is
// "credential", AccountID equals the user id and Password holds the bcrypt hash.
type Account struct {
	ID                    string     `json:"id" db:"id"`
	AccountID             string     `json:"accountId" db:"account_id"`
	ProviderID            string     `json:"providerId" db:"provider_id"`
	UserID                string     `json:"userId" db:"user_id"`
	AccessToken           *string    `json:"-" db:"access_token"`
	RefreshToken          *string    `json:"-" db:"refresh_token"`
	IDToken               *string    `json:"-" db:"id_token"`
	AccessTokenExpiresAt  *time.Time `json:"accessTokenExpiresAt,omitempty" db:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refreshTokenExpiresAt,omitempty" db:"refresh_token_expires_at"`
	Scope                 *string    `json:"scope,omitempty" db:"scope"`
	Password              *string    `json:"-" db:"password"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

type Verification struct {
	ID         string     `json:"id" db:"id"`
	Identifier string     `json:"identifier" db:"identifier"`
	Value      string     `json:"-" db:"value"`
	ExpiresAt  time.Time  `json:"expiresAt" db:"expires_at"`
	CreatedAt  *time.Time `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// * IsExpired reports whether the verification token can no longer be redeemed.
func (v *Verification) IsExpired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

type Category struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"`
	Color     string    `json:"color" db:"color"`
	Icon      string    `json:"icon" db:"icon"`
	IsDefault bool      `json:"isDefault" db:"is_default"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

const PurposeEmailVerification = "email_verification"

// Message is the payload queued for the mailer.
type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}
