package profiles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/lib/store/lstore"
	"github.com/spf13/cobra"
)

// run executes a subcommand directly, bypassing the store setup of the group
func run(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("failed to set --%s: %v", name, err)
		}
	}
	defer func() {
		for name := range flags {
			f := cmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}()
	if err := cmd.RunE(cmd, args); err != nil {
		t.Fatalf("%s %v failed: %v", cmd.Name(), args, err)
	}
	return out.String()
}

func TestProfileCommands(t *testing.T) {
	manager = profile.NewManager(lstore.NewLocalStore())

	out := run(t, addCmd, map[string]string{"host": "db1", "port": "3100", "use": "true"}, "primary")
	if !strings.HasPrefix(out, "saved profile primary") {
		t.Errorf("unexpected output %q", out)
	}
	run(t, addCmd, map[string]string{"user": "admin", "password": "secret"}, "backup")

	all, err := manager.List()
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 profiles, got %d (%v)", len(all), err)
	}
	active, ok, err := manager.Active()
	if err != nil || !ok || active.Name != "primary" {
		t.Fatalf("expected primary to be active, got %+v ok=%v err=%v", active, ok, err)
	}

	out = run(t, listCmd, nil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], "db1:3100") {
		t.Errorf("primary should be marked active: %q", lines[1])
	}
	if !strings.Contains(lines[2], "localhost:3000") || !strings.Contains(lines[2], "admin") {
		t.Errorf("backup should use the default address: %q", lines[2])
	}

	run(t, updateCmd, map[string]string{"name": "main", "port": "4000"}, "primary")
	p, err := manager.Find("main")
	if err != nil {
		t.Fatalf("renamed profile not found: %v", err)
	}
	if p.Host != "db1" || p.Port != 4000 {
		t.Errorf("update should merge fields, got %+v", p)
	}

	out = run(t, useCmd, nil, "backup")
	if out != "active profile is backup\n" {
		t.Errorf("unexpected output %q", out)
	}
	run(t, deleteCmd, nil, "backup")
	if out = run(t, activeCmd, nil); out != "no active profile\n" {
		t.Errorf("deleting the active profile should clear it, got %q", out)
	}
}

func TestPreferenceCommands(t *testing.T) {
	manager = profile.NewManager(lstore.NewLocalStore())

	if out := run(t, themeCmd, nil); out != "dark\n" {
		t.Errorf("expected default theme dark, got %q", out)
	}
	if out := run(t, themeCmd, nil, "LIGHT"); out != "light\n" {
		t.Errorf("expected theme light, got %q", out)
	}
	if err := themeCmd.RunE(themeCmd, []string{"blue"}); err == nil {
		t.Error("expected error for an unknown theme")
	}

	if out := run(t, widthCmd, nil); out != "500\n" {
		t.Errorf("expected default width 500, got %q", out)
	}
	if out := run(t, widthCmd, nil, "1200"); out != "800\n" {
		t.Errorf("expected clamped width 800, got %q", out)
	}
	if out := run(t, widthCmd, nil, "10"); out != "300\n" {
		t.Errorf("expected clamped width 300, got %q", out)
	}
}
