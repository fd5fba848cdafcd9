package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const sinkAddress = "0.0.0.0"

// ErrUnterminatedSection reports a begin marker without its end marker.
var ErrUnterminatedSection = errors.New("unterminated rule section in hosts file")

// HostsGateway enforces a rule set by maintaining a marked section in a
// hosts file. Lines outside the section are never touched.
type HostsGateway struct {
	mu    sync.Mutex
	path  string
	rules RuleSet
}

func NewHostsGateway(path string, rules RuleSet) *HostsGateway {
	return &HostsGateway{path: path, rules: rules}
}

func (g *HostsGateway) Name() string {
	return g.rules.Name
}

func (g *HostsGateway) Enable(ctx context.Context) error {
	return g.rewrite(ctx, true)
}

func (g *HostsGateway) Disable(ctx context.Context) error {
	return g.rewrite(ctx, false)
}

// Enabled reports whether the hosts file currently carries the section.
func (g *HostsGateway) Enabled() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read hosts file: %w", err)
	}
	return bytes.Contains(data, []byte(g.beginMarker())), nil
}

func (g *HostsGateway) rewrite(ctx context.Context, enable bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read hosts file: %w", err)
	}

	content, err := g.stripSection(data)
	if err != nil {
		return err
	}
	if enable {
		content = append(content, g.section()...)
	}
	if bytes.Equal(content, data) {
		return nil
	}
	return writeAtomic(g.path, content)
}

func (g *HostsGateway) beginMarker() string {
	return "# BEGIN " + g.rules.Name
}

func (g *HostsGateway) endMarker() string {
	return "# END " + g.rules.Name
}

func (g *HostsGateway) section() []byte {
	var sb strings.Builder
	sb.WriteString(g.beginMarker())
	sb.WriteString("\n")
	for _, d := range g.rules.Domains {
		fmt.Fprintf(&sb, "%s %s\n", sinkAddress, d)
		fmt.Fprintf(&sb, "%s www.%s\n", sinkAddress, d)
	}
	sb.WriteString(g.endMarker())
	sb.WriteString("\n")
	return []byte(sb.String())
}

// stripSection drops the managed section and guarantees the remainder ends
// with a newline so a section can be appended cleanly. A section with no end
// marker is left for the user to repair rather than guessing where it stops.
func (g *HostsGateway) stripSection(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out bytes.Buffer
	inSection := false
	for _, line := range bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n")) {
		switch string(bytes.TrimSpace(line)) {
		case g.beginMarker():
			inSection = true
			continue
		case g.endMarker():
			inSection = false
			continue
		}
		if inSection {
			continue
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	if inSection {
		return nil, fmt.Errorf("%w: %q has no matching %q in %s",
			ErrUnterminatedSection, g.beginMarker(), g.endMarker(), g.path)
	}
	return out.Bytes(), nil
}

func writeAtomic(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".hosts-*")
	if err != nil {
		return fmt.Errorf("create temp hosts file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp hosts file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp hosts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp hosts file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace hosts file: %w", err)
	}
	return nil
}
