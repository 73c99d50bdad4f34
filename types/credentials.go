package types

import "time"

// CredentialSet holds temporary credentials exchanged for a matched
// profile. Created at most once per run and never refreshed, even if
// it nears expiry before the run ends.
type CredentialSet struct {
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	SessionToken    string    `json:"session_token"`
	ExpiresAt       time.Time `json:"expires_at"`
	Profile         string    `json:"profile"`
}
