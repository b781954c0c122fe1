package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with a scope are valid",
			mutate: func(c *Config) { c.Scopes = []string{"widgets"} },
		},
		{
			name:    "missing scopes",
			mutate:  func(c *Config) {},
			wantErr: "scope",
		},
		{
			name: "missing listings",
			mutate: func(c *Config) {
				c.Scopes = []string{"widgets"}
				c.Listings = nil
			},
			wantErr: "listing",
		},
		{
			name: "negative depth",
			mutate: func(c *Config) {
				c.Scopes = []string{"widgets"}
				c.MaxDepth = -1
			},
			wantErr: "max_depth",
		},
		{
			name: "zero fanout",
			mutate: func(c *Config) {
				c.Scopes = []string{"widgets"}
				c.MaxFanout = 0
			},
			wantErr: "max_fanout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSearchTreeParamsCappedByMaxDepth(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.MaxDepth = 0
	cfg.SearchMaxDepth = 3

	params := cfg.searchTreeParams()
	assert.Equal(t, 0, params.maxDepth)
	assert.Equal(t, cfg.SearchCommentsPerPost, params.topLevel)
}

func TestMinScoreAtDepth(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.MinReplyScore = -5
	cfg.ReplyScoreSlack = 3

	assert.Equal(t, -5, cfg.minScoreAtDepth(0))
	assert.Equal(t, -8, cfg.minScoreAtDepth(1))
	assert.Equal(t, -8, cfg.minScoreAtDepth(4))
}
