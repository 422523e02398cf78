package initializers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	saved := AppConfig
	t.Cleanup(func() { AppConfig = saved })

	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "AUTH_PROVIDER", "COMMENT_MAX_DEPTH", "ALLOW_MODERATOR_DELETE", "ALLOWED_ORIGINS", "SITE_URL", "PROFILE_CACHE_TTL"} {
			t.Setenv(key, "")
		}

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "jwt", cfg.AuthProvider)
		assert.Equal(t, 5, cfg.CommentMaxDepth)
		assert.False(t, cfg.AllowModeratorDelete)
		assert.Equal(t, []string{"http://localhost:4321"}, cfg.AllowedOrigins)
		assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
		assert.Same(t, cfg, AppConfig)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("AUTH_PROVIDER", "Firebase")
		t.Setenv("COMMENT_MAX_DEPTH", "3")
		t.Setenv("ALLOW_MODERATOR_DELETE", "true")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("SITE_URL", "https://presstune.io/")
		t.Setenv("PROFILE_CACHE_TTL", "30s")

		cfg := LoadConfig()

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, "firebase", cfg.AuthProvider)
		assert.Equal(t, 3, cfg.CommentMaxDepth)
		assert.True(t, cfg.AllowModeratorDelete)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		assert.Equal(t, "https://presstune.io", cfg.SiteURL)
		assert.Equal(t, 30*time.Second, cfg.ProfileCacheTTL)
	})

	t.Run("origins follow the site url", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "")
		t.Setenv("SITE_URL", "https://presstune.io/")

		cfg := LoadConfig()

		assert.Equal(t, []string{"https://presstune.io"}, cfg.AllowedOrigins)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		t.Setenv("COMMENT_MAX_DEPTH", "-2")
		t.Setenv("ALLOW_MODERATOR_DELETE", "maybe")
		t.Setenv("PROFILE_CACHE_TTL", "soon")

		cfg := LoadConfig()

		assert.Equal(t, 5, cfg.CommentMaxDepth)
		assert.False(t, cfg.AllowModeratorDelete)
		assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
	})
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for i, name := range names {
		assert.True(t, strings.HasSuffix(name, ".sql"))
		if i > 0 {
			assert.Less(t, names[i-1], name)
		}
	}
}
