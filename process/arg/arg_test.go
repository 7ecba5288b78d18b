package arg_test

import (
	"slices"
	"testing"

	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/process/arg"
)

func tokensOf(e process.Executable) []string {
	return e.CommandLine().Tokens()
}

func TestContributors(t *testing.T) {
	tests := []struct {
		name string
		arg  process.Argument
		want []string
	}{
		{"flag", arg.Flag("-v"), []string{"prog", "-v"}},
		{"option", arg.Option("-o", "out.txt"), []string{"prog", "-o", "out.txt"}},
		{"assign", arg.Assign("--level", "3"), []string{"prog", "--level=3"}},
		{"each", arg.Each("a", "b", "c"), []string{"prog", "a", "b", "c"}},
		{"each empty", arg.Each(), []string{"prog"}},
		{"list", arg.List(arg.Flag("-x"), arg.Option("-n", "1")), []string{"prog", "-x", "-n", "1"}},
		{"if true", arg.If(true, arg.Flag("--force")), []string{"prog", "--force"}},
		{"if false", arg.If(false, arg.Flag("--force")), []string{"prog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exe := process.New("prog")
			got := exe.Apply(tt.arg)
			if got != process.Executable(exe) {
				t.Fatal("contributor must return the same executable")
			}
			if !slices.Equal(tokensOf(exe), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, tokensOf(exe))
			}
		})
	}
}

func TestSplit(t *testing.T) {
	a, err := arg.Split(`-c 'echo "hi there"' $HOME`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exe := process.New("sh")
	exe.Apply(a)

	want := []string{"sh", "-c", `echo "hi there"`, "$HOME"}
	if !slices.Equal(tokensOf(exe), want) {
		t.Fatalf("expected %v, got %v", want, tokensOf(exe))
	}
}

func TestSplitUnterminatedQuote(t *testing.T) {
	if _, err := arg.Split(`echo "oops`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestContributorsThroughNonBlocking(t *testing.T) {
	inner := process.New("prog")
	bg := process.NewNonBlocking(inner, process.WithLowPriority(false))

	got := bg.Apply(arg.Option("-o", "x"))
	if got != process.Executable(bg) {
		t.Fatal("contributor must return the decorator")
	}
	want := []string{"prog", "-o", "x"}
	if !slices.Equal(tokensOf(inner), want) {
		t.Fatalf("expected %v on inner, got %v", want, tokensOf(inner))
	}
}
