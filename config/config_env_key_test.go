package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"rateLimit": map[string]any{
			"redis": map[string]any{
				"addr": "",
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"mail": map[string]any{
			"fromName": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "RATELIMIT_REDIS_ADDR", want: "rateLimit.redis.addr"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "MAIL_FROMNAME", want: "mail.fromName"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
