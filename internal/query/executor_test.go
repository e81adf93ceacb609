package query

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptTool runs a shell snippet in place of nix-store. The store path is
// passed as $1.
type scriptTool struct {
	script string
}

func (s scriptTool) Command(storePath string) (string, []string) {
	return "sh", []string{"-c", s.script, "nix-store", storePath}
}

func (s scriptTool) Name() string { return "nix-store" }

func TestNixStoreCommand(t *testing.T) {
	name, args := DetectTool("").Command("/nix/store/abc-hello")
	if name != "nix-store" || strings.Join(args, " ") != "--query --tree /nix/store/abc-hello" {
		t.Fatalf("Command = %s %v", name, args)
	}
	tool := DetectTool(" /run/current-system/sw/bin/nix-store ")
	if name, _ := tool.Command("x"); name != "/run/current-system/sw/bin/nix-store" {
		t.Fatalf("binary = %q", name)
	}
	if tool.Name() != "nix-store" {
		t.Fatalf("Name = %q", tool.Name())
	}
}

func TestQuery(t *testing.T) {
	tool := scriptTool{script: `printf '%s\n+---/nix/store/pnd2-glibc-2.27\n' "$1"`}
	res, raw, err := Query(context.Background(), tool, "/nix/store/qy93-hello-2.10")
	if err != nil {
		t.Fatal(err)
	}
	if raw != "/nix/store/qy93-hello-2.10\n+---/nix/store/pnd2-glibc-2.27\n" {
		t.Fatalf("raw = %q", raw)
	}
	if res.Root().Path != "/nix/store/qy93-hello-2.10" || res.Size() != 2 {
		t.Fatalf("result = %+v", res.Tree)
	}
}

func TestQueryNixStoreFailure(t *testing.T) {
	tool := scriptTool{script: `echo "error: path '$1' is not in the Nix store" >&2; exit 1`}
	_, _, err := Query(context.Background(), tool, "/tmp/nope")
	if !errors.Is(err, ErrNixStore) {
		t.Fatalf("err = %v, want ErrNixStore", err)
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("err is %T, want *ExecError", err)
	}
	if execErr.Stderr != "error: path '/tmp/nope' is not in the Nix store" {
		t.Fatalf("Stderr = %q", execErr.Stderr)
	}
	if !strings.Contains(err.Error(), "is not in the Nix store") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestQueryMissingBinary(t *testing.T) {
	tool := DetectTool("/nonexistent/bin/nix-store")
	_, _, err := Query(context.Background(), tool, "/nix/store/abc-x")
	if !errors.Is(err, ErrCommand) {
		t.Fatalf("err = %v, want ErrCommand", err)
	}
}

func TestQueryNotUTF8(t *testing.T) {
	tool := scriptTool{script: `printf '/nix/store/abc-\377\n'`}
	_, _, err := Query(context.Background(), tool, "/nix/store/abc-x")
	if !errors.Is(err, ErrNotUTF8) {
		t.Fatalf("err = %v, want ErrNotUTF8", err)
	}
}

func TestQueryParseFailureKeepsRaw(t *testing.T) {
	tool := scriptTool{script: `printf '/nix/store/abc-x\n  +---/nix/store/def-y\n'`}
	_, raw, err := Query(context.Background(), tool, "/nix/store/abc-x")
	if !errors.Is(err, ErrMalformedIndent) {
		t.Fatalf("err = %v, want ErrMalformedIndent", err)
	}
	if !strings.HasPrefix(raw, "/nix/store/abc-x\n") {
		t.Fatalf("raw output not returned: %q", raw)
	}
}

func TestQueryCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err := Query(ctx, scriptTool{script: `sleep 5`}, "/nix/store/abc-x")
	if err == nil {
		t.Fatalf("expected an error from a cancelled query")
	}
}

func TestLoad(t *testing.T) {
	res, raw, err := Load(strings.NewReader(readFixture(t, "hello-drv.tree")))
	if err != nil {
		t.Fatal(err)
	}
	if res.Raw != raw || res.Size() != 22 {
		t.Fatalf("Load size = %d", res.Size())
	}

	_, _, err = Load(strings.NewReader("/nix/store/abc-x"))
	if !errors.Is(err, ErrMalformedEntryLine) {
		t.Fatalf("err = %v, want ErrMalformedEntryLine", err)
	}
}
