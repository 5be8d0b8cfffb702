package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table                string
	ID                   string
	Email                string
	Username             string
	PasswordHash         string
	HashedRefreshToken   string
	IsLogged             string
	FirstLogin           string
	TwoFactorStatus      string
	TwoFactorSecret      string
	SignedInWithProvider string
	AvatarURL            string
	CreatedAt            string
	UpdatedAt            string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:                "users.account",
	ID:                   "id",
	Email:                "email",
	Username:             "username",
	PasswordHash:         "passwordhash",
	HashedRefreshToken:   "hashedrt",
	IsLogged:             "islogged",
	FirstLogin:           "firstlogin",
	TwoFactorStatus:      "twofactorstatus",
	TwoFactorSecret:      "twofactorsecret",
	SignedInWithProvider: "signedinwithprovider",
	AvatarURL:            "avatarurl",
	CreatedAt:            "createdat",
	UpdatedAt:            "updatedat",
}

// Columns returns all standard column names, in scan order
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Username, t.PasswordHash, t.HashedRefreshToken,
		t.IsLogged, t.FirstLogin, t.TwoFactorStatus, t.TwoFactorSecret,
		t.SignedInWithProvider, t.AvatarURL, t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns the columns joined for a SELECT or RETURNING clause
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
