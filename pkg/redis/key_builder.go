package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyRankings() string {
	return kb.BuildKey(KeyRankings)
}

func (kb *KeyBuilder) KeyAnalytics() string {
	return kb.BuildKey(KeyAnalytics)
}

func (kb *KeyBuilder) KeyTeamByID(teamID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTeamByID, teamID))
}

func (kb *KeyBuilder) KeyCodeList() string {
	return kb.BuildKey(KeyCodeList)
}

// KeyCustom builds an arbitrary prefixed key
func (kb *KeyBuilder) KeyCustom(format string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(format, args...))
}
