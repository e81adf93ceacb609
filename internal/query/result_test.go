package query

import (
	"errors"
	"strings"
	"testing"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

const (
	builderPath   = model.StorePath("/nix/store/9krlzvny65gdc8s7kpb6lkx8cd02c25b-default-builder.sh")
	bootstrapPath = model.StorePath("/nix/store/bfil786fxmnjcwc7mqpm0mk4xnm2cphg-bootstrap-tools.drv")
	bashPath      = model.StorePath("/nix/store/m3dzp25n0g4fwlygdhvak1kk8xz906n9-bash-4.4-p23.drv")
)

func buildFixture(t *testing.T) *Result {
	t.Helper()
	res, err := Build(readFixture(t, "hello-drv.tree"))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestBuildCollapsedBackReference(t *testing.T) {
	raw := lines(
		"/nix/store/qy93-hello-2.10",
		"+---/nix/store/pnd2-glibc-2.27",
		"|   +---/nix/store/pnd2-glibc-2.27 [...]",
		"+---/nix/store/qy93-hello-2.10 [...]",
	)
	res, err := Build(raw)
	if err != nil {
		t.Fatal(err)
	}
	if res.Raw != raw {
		t.Fatalf("Raw was not kept verbatim")
	}
	if res.Size() != 4 || res.Tree.Depth() != 2 {
		t.Fatalf("Size/Depth = %d/%d, want 4/2", res.Size(), res.Tree.Depth())
	}

	e, ok := res.LookupPath(tree.PathOf(0, 0))
	if !ok || e.Recurse != model.Collapsed || e.Path != "/nix/store/pnd2-glibc-2.27" {
		t.Fatalf("[0 0] = %+v, %v", e, ok)
	}

	first, ok := res.FirstOccurrence("/nix/store/pnd2-glibc-2.27")
	if !ok || !first.Equal(tree.PathOf(0)) {
		t.Fatalf("FirstOccurrence(glibc) = %v, %v; want [0]", first, ok)
	}
	first, ok = res.FirstOccurrence("/nix/store/qy93-hello-2.10")
	if !ok || !first.IsRoot() {
		t.Fatalf("FirstOccurrence(hello) = %v, %v; want root", first, ok)
	}
	if got := res.Occurrences("/nix/store/qy93-hello-2.10"); len(got) != 2 || !got[1].Equal(tree.PathOf(1)) {
		t.Fatalf("Occurrences(hello) = %v", got)
	}
	if _, ok := res.FirstOccurrence("/nix/store/none-missing"); ok {
		t.Fatalf("FirstOccurrence of an absent path should fail")
	}
}

func TestBuildGroupsFreshAndCollapsed(t *testing.T) {
	res := buildFixture(t)
	got := pathList(res.Occurrences(builderPath))
	want := "0 1.1 1.3.1 2.0"
	if got != want {
		t.Fatalf("Occurrences(default-builder) = %s, want %s", got, want)
	}
	if res.Index.Total() != res.Tree.Size() {
		t.Fatalf("index holds %d paths for %d nodes", res.Index.Total(), res.Tree.Size())
	}
	if res.Index.Len() != 16 {
		t.Fatalf("distinct store paths = %d, want 16", res.Index.Len())
	}
}

func TestBuildFailureKeepsKind(t *testing.T) {
	_, err := Build("/nix/store/r-root\n  +---/nix/store/a-a\n")
	if !errors.Is(err, ErrMalformedIndent) {
		t.Fatalf("Build err = %v, want ErrMalformedIndent", err)
	}
}

func pathList(paths []tree.Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func TestSearch(t *testing.T) {
	res := buildFixture(t)
	if got := pathList(res.Search("BOOTSTRAP-TOOLS")); got != "1.2 1.2.1 1.2.2 1.3.2 1.3.3.1" {
		t.Fatalf("Search(bootstrap-tools) = %s", got)
	}
	if got := res.Search("   "); got != nil {
		t.Fatalf("blank search should match nothing, got %v", got)
	}
	if got := res.Search("no-such-package"); len(got) != 0 {
		t.Fatalf("Search(no-such-package) = %v", got)
	}
}

func TestLineOf(t *testing.T) {
	res := buildFixture(t)
	tests := []struct {
		path tree.Path
		line int
	}{
		{tree.Root(), 1},
		{tree.PathOf(0), 2},
		{tree.PathOf(1, 3, 3, 2, 0), 18},
		{tree.PathOf(3), 22},
	}
	for _, tt := range tests {
		got, ok := res.LineOf(tt.path)
		if !ok || got != tt.line {
			t.Fatalf("LineOf(%v) = %d, %v; want %d", tt.path, got, ok, tt.line)
		}
	}
	if _, ok := res.LineOf(tree.PathOf(9)); ok {
		t.Fatalf("LineOf of a missing path should fail")
	}
}

func TestSortedAlphabetical(t *testing.T) {
	res := buildFixture(t)
	sorted := res.Sorted(Alphabetical)

	if sorted == res || sorted.Order != Alphabetical {
		t.Fatalf("Sorted should return a new alphabetical Result")
	}
	if sorted.Raw != res.Raw || sorted.Size() != res.Size() {
		t.Fatalf("sorting changed Raw or the node count")
	}

	var top []string
	for _, c := range sorted.Tree.Children {
		name, _ := c.Item.Path.DrvName()
		top = append(top, name)
	}
	if got := strings.Join(top, " "); got != "bash-4.4-p23.drv default-builder.sh hello-2.10.tar.gz.drv stdenv-linux.drv" {
		t.Fatalf("top level = %s", got)
	}

	// The source Result is untouched.
	if e, _ := res.LookupPath(tree.PathOf(0)); e.Path != builderPath {
		t.Fatalf("input tree was reordered")
	}

	// The first occurrence in sorted order is a back-reference; the full
	// occurrence is still found.
	first, _ := sorted.FirstOccurrence(builderPath)
	if e, _ := sorted.LookupPath(first); !e.IsCollapsed() {
		t.Fatalf("expected the first sorted occurrence %v to be collapsed", first)
	}
	full, ok := sorted.FullOccurrence(builderPath)
	if !ok || !full.Equal(tree.PathOf(1)) {
		t.Fatalf("FullOccurrence = %v, %v; want [1]", full, ok)
	}

	// Lines still point at the raw output.
	line, ok := sorted.LineOf(full)
	if !ok || line != 2 {
		t.Fatalf("LineOf(%v) = %d, %v; want 2", full, line, ok)
	}
	line, _ = sorted.LineOf(first)
	if !strings.HasPrefix(strings.TrimLeft(strings.Split(res.Raw, "\n")[line-1], "| "), "+---"+string(builderPath)+" [...]") {
		t.Fatalf("line %d is not a collapsed default-builder reference", line)
	}
}

func TestSortedBackToStoreOutput(t *testing.T) {
	res := buildFixture(t)
	back := res.Sorted(Alphabetical).Sorted(StoreOutput)
	if !tree.Equal(back.Tree, res.Tree) {
		t.Fatalf("sorting back did not restore nix-store order")
	}
	if diff, ok := Verify(back); !ok {
		t.Fatalf("restored tree does not re-render to the raw output:\n%s", diff)
	}
	if res.Sorted(StoreOutput) != res {
		t.Fatalf("sorting into the current order should return the receiver")
	}
}

func TestFullOccurrenceMatchesFirstInOutputOrder(t *testing.T) {
	res := buildFixture(t)
	for _, sp := range res.Index.Keys() {
		first, _ := res.FirstOccurrence(sp)
		full, _ := res.FullOccurrence(sp)
		if !first.Equal(full) {
			t.Fatalf("%s: first %v != full %v", sp, first, full)
		}
	}
}

func TestVerifyReportsDifferences(t *testing.T) {
	res := buildFixture(t)
	if diff, ok := Verify(res); !ok {
		t.Fatalf("fixture should verify:\n%s", diff)
	}

	// nix-store never prints "|   " under a last child; the parser accepts
	// it but the rendering differs.
	odd, err := Build(lines(
		"/nix/store/r-root",
		"+---/nix/store/a-a",
		"|   +---/nix/store/b-b",
		"|   +---/nix/store/c-c",
	))
	if err != nil {
		t.Fatal(err)
	}
	diff, ok := Verify(odd)
	if ok {
		t.Fatalf("non-canonical indentation should not verify")
	}
	if !strings.Contains(diff, "-|   +---/nix/store/c-c") || !strings.Contains(diff, "+    +---/nix/store/c-c") {
		t.Fatalf("unexpected diff:\n%s", diff)
	}
}

func TestLinesSurviveSorting(t *testing.T) {
	res := buildFixture(t)
	lines := res.Lines()
	if len(lines) != 22 || lines[""] != 1 || lines["1.3.3.2.0"] != 18 {
		t.Fatalf("Lines = %v", lines)
	}

	sorted := res.Sorted(Alphabetical)
	seen := make(map[int]bool)
	for key, line := range sorted.Lines() {
		p, err := tree.ParsePath(key)
		if err != nil {
			t.Fatal(err)
		}
		if want, _ := sorted.LineOf(p); want != line {
			t.Fatalf("Lines[%s] = %d, LineOf = %d", key, line, want)
		}
		seen[line] = true
	}
	if len(seen) != 22 {
		t.Fatalf("sorted lines are not a permutation: %v", seen)
	}
}

func TestPathAtLine(t *testing.T) {
	res := buildFixture(t)
	for _, r := range []*Result{res, res.Sorted(Alphabetical)} {
		for key, line := range r.Lines() {
			p, ok := r.PathAtLine(line)
			if !ok || p.String() != key {
				t.Fatalf("%v: PathAtLine(%d) = %v, %v; want [%s]", r.Order, line, p, ok, key)
			}
		}
		for _, line := range []int{0, -1, r.Size() + 1} {
			if _, ok := r.PathAtLine(line); ok {
				t.Fatalf("%v: PathAtLine(%d) should fail", r.Order, line)
			}
		}
	}

	if p, _ := res.PathAtLine(22); !p.Equal(tree.PathOf(3)) {
		t.Fatalf("line 22 is at %v, want [3]", p)
	}
}
