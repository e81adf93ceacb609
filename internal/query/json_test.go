package query

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDocumentJSON(t *testing.T) {
	res, err := Build(lines(
		"/nix/store/qy93-hello-2.10",
		"+---/nix/store/pnd2-glibc-2.27",
		"|   +---/nix/store/pnd2-glibc-2.27 [...]",
		"+---/nix/store/qy93-hello-2.10 [...]",
	))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(NewDocument(res))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		`"order":"store"`,
		`"path":"/nix/store/qy93-hello-2.10","recurse":"fresh","label":"qy93..hello-2.10","treePath":"","line":1`,
		`"path":"/nix/store/pnd2-glibc-2.27","recurse":"collapsed","label":"pnd2..glibc-2.27","treePath":"0.0","line":3}`,
		`"treePath":"1","line":4}`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("JSON missing %s:\n%s", want, got)
		}
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("document does not decode: %v", err)
	}
	if back.Tree.Children[0].TreePath.String() != "0" || back.Summary.Nodes != 4 {
		t.Fatalf("decoded = %+v", back)
	}
}
