package common

const (
	// AuthorizationHeaderName carries the bearer session token on API calls.
	AuthorizationHeaderName = "Authorization"

	// KeyPrefix is the stable prefix of every durable storage key.
	KeyPrefix = "edusync"
)
