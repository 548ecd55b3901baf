package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustValid checks the settings that main cannot run without.
func (c Config) MustValid() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	if c.BlacklistBackend != BlacklistBackendDB && c.BlacklistBackend != BlacklistBackendRedis {
		log.Fatalf("unsupported BLACKLIST_BACKEND %q", c.BlacklistBackend)
	}
	if c.AccessTTL >= c.RefreshTTL {
		log.Fatalf("ACCESS_TOKEN_TTL (%s) must be shorter than REFRESH_TOKEN_TTL (%s)", c.AccessTTL, c.RefreshTTL)
	}
}
