package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleSet(t *testing.T) {
	rs, err := DefaultRuleSet()
	require.NoError(t, err)
	assert.Equal(t, RuleSetName, rs.Name)
	assert.Contains(t, rs.Domains, "reddit.com")
	assert.Contains(t, rs.Domains, "linkedin.com")
	assert.Contains(t, rs.Domains, "youtube.com")
}

func TestParseRuleSet(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    []string
		wantErr bool
	}{
		{
			name: "normalizes and dedupes",
			yaml: "name: blocking_rules\ndomains:\n  - WWW.Example.com\n  - example.com\n  - ' other.org '\n",
			want: []string{"example.com", "other.org"},
		},
		{name: "missing name", yaml: "domains: [a.com]\n", wantErr: true},
		{name: "no domains", yaml: "name: blocking_rules\n", wantErr: true},
		{name: "bad domain", yaml: "name: r\ndomains: ['a.com/path']\n", wantErr: true},
		{name: "invalid yaml", yaml: "name: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseRuleSet([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rs.Domains)
		})
	}
}

func testRules() RuleSet {
	return RuleSet{Name: RuleSetName, Domains: []string{"example.com"}}
}

func TestHostsGatewayEnableDisable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hosts")
	base := "127.0.0.1 localhost\n::1 localhost"
	require.NoError(t, os.WriteFile(path, []byte(base), 0o644))

	g := NewHostsGateway(path, testRules())
	assert.Equal(t, RuleSetName, g.Name())

	require.NoError(t, g.Enable(ctx))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "127.0.0.1 localhost\n::1 localhost\n"))
	assert.Contains(t, content, "# BEGIN blocking_rules\n0.0.0.0 example.com\n0.0.0.0 www.example.com\n# END blocking_rules\n")

	enabled, err := g.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	// Idempotent.
	require.NoError(t, g.Enable(ctx))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(again))

	require.NoError(t, g.Disable(ctx))
	require.NoError(t, g.Disable(ctx))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, base+"\n", string(data))

	enabled, err = g.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestHostsGatewayKeepsLinesAfterLongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	base := "127.0.0.1 localhost\n# " + strings.Repeat("x", 70*1024) + "\n10.0.0.5 intranet.local\n"
	require.NoError(t, os.WriteFile(path, []byte(base), 0o644))

	g := NewHostsGateway(path, testRules())
	require.NoError(t, g.Enable(context.Background()))
	require.NoError(t, g.Disable(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, base, string(data))
}

func TestHostsGatewayRefusesUnterminatedSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	base := "127.0.0.1 localhost\n# BEGIN blocking_rules\n0.0.0.0 example.com\n10.0.0.5 intranet.local\n"
	require.NoError(t, os.WriteFile(path, []byte(base), 0o644))

	g := NewHostsGateway(path, testRules())
	assert.ErrorIs(t, g.Disable(context.Background()), ErrUnterminatedSection)
	assert.ErrorIs(t, g.Enable(context.Background()), ErrUnterminatedSection)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, base, string(data))
}

func TestHostsGatewayMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	g := NewHostsGateway(path, testRules())

	enabled, err := g.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, g.Disable(context.Background()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, g.Enable(context.Background()))
	enabled, err = g.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestHostsGatewayCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewHostsGateway(filepath.Join(t.TempDir(), "hosts"), testRules())
	assert.ErrorIs(t, g.Enable(ctx), context.Canceled)
}

func TestMemoryGateway(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(RuleSetName)

	require.NoError(t, g.Enable(ctx))
	assert.True(t, g.Enabled())
	require.NoError(t, g.Disable(ctx))
	assert.False(t, g.Enabled())

	boom := errors.New("boom")
	g.FailWith(boom)
	assert.ErrorIs(t, g.Enable(ctx), boom)
	assert.False(t, g.Enabled())

	enables, disables := g.Calls()
	assert.Equal(t, 1, enables)
	assert.Equal(t, 1, disables)
}
