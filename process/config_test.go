package process

import (
	"slices"
	"testing"
	"time"

	apperrors "github.com/kbukum/execkit/errors"
)

func TestConfigApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	if c.SearchPathVar != "PATH" {
		t.Errorf("expected PATH, got %q", c.SearchPathVar)
	}
	if !slices.Equal(c.Extensions, DefaultExtensions) {
		t.Errorf("expected default extensions, got %v", c.Extensions)
	}
	if !slices.Equal(c.RegularExitCodes, []int{0}) {
		t.Errorf("expected [0], got %v", c.RegularExitCodes)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"exit code too large", Config{RegularExitCodes: []int{256}}},
		{"negative exit code", Config{RegularExitCodes: []int{-1}}},
		{"negative max concurrent", Config{MaxConcurrent: -1}},
		{"extension without dot", Config{Extensions: []string{"sh"}}},
		{"negative max wait", Config{MaxConcurrent: 1, MaxWait: -time.Second}},
		{"max wait without cap", Config{MaxWait: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestConfigPolicy(t *testing.T) {
	c := Config{}
	if _, ok := c.Policy().(AllowAll); !ok {
		t.Fatalf("expected AllowAll, got %T", c.Policy())
	}

	c = Config{Deny: []string{"rm"}, Allow: []string{"ls", "rm"}}
	p := c.Policy()
	if p.CheckExec("/bin/rm") == nil {
		t.Error("expected rm to be denied")
	}
	if p.CheckExec("/bin/ls") != nil {
		t.Error("expected ls to be allowed")
	}
	if p.CheckExec("/bin/cat") == nil {
		t.Error("expected cat to be outside the allow list")
	}
}

func TestConfigOptions(t *testing.T) {
	c := Config{RegularExitCodes: []int{0, 1}, Deny: []string{"rm"}}
	exe := New("/bin/rm", c.Options()...)

	if !slices.Equal(exe.ValidExitCodes().Codes(), []int{0, 1}) {
		t.Fatalf("unexpected codes %v", exe.ValidExitCodes().Codes())
	}
	if err := exe.policy.CheckExec("/bin/rm"); err == nil {
		t.Fatal("expected the deny list to be applied")
	}
}

func TestConfigBulkhead(t *testing.T) {
	c := Config{}
	if c.Bulkhead("w") != nil {
		t.Fatal("expected no bulkhead without max_concurrent")
	}
	c.MaxConcurrent = 3
	b := c.Bulkhead("w")
	if b == nil || b.MaxConcurrent() != 3 || b.Name() != "w" {
		t.Fatalf("unexpected bulkhead %+v", b)
	}

	n := NewNonBlocking(New("/bin/true"), c.NonBlockingOptions(b)...)
	if n.bulkhead != b {
		t.Fatal("expected the bulkhead to be wired")
	}
	if n.lowPriority {
		t.Fatal("expected low priority to follow the config")
	}
}

func TestConfigFinder(t *testing.T) {
	c := Config{SearchPathVar: "TOOLS", Extensions: []string{".sh"}, RequireExecutable: true}
	f := c.Finder()
	if f.PathVar != "TOOLS" || !slices.Equal(f.Extensions, []string{".sh"}) || !f.RequireExecutable {
		t.Fatalf("unexpected finder %+v", f)
	}
}
