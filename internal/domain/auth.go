package domain

// Credential kinds are the fixed storage keys of the two tokens.
type CredentialKind string

const (
	AccessToken  CredentialKind = "accessToken"
	RefreshToken CredentialKind = "refreshToken"
)

type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Profile is the user object returned on login. Kept in memory only.
type Profile struct {
	Id       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
