package model

import "testing"

func TestLineContextOf(t *testing.T) {
	raw := "one\ntwo\nthree\nfour\nfive\n"

	ctx := LineContextOf(raw, 3)
	if ctx.ErrorMsg != "" {
		t.Fatalf("unexpected error: %s", ctx.ErrorMsg)
	}
	if ctx.Target != "three" || ctx.Before2 != "one" || ctx.Before1 != "two" || ctx.After1 != "four" || ctx.After2 != "five" {
		t.Fatalf("context = %+v", ctx)
	}
	if !ctx.HasBefore2 || !ctx.HasBefore1 || !ctx.HasAfter1 || !ctx.HasAfter2 {
		t.Fatalf("all context flags should be set: %+v", ctx)
	}
}

func TestLineContextEdges(t *testing.T) {
	raw := "one\ntwo\n"

	first := LineContextOf(raw, 1)
	if first.Target != "one" || first.HasBefore1 || !first.HasAfter1 || first.HasAfter2 {
		t.Fatalf("first line context = %+v", first)
	}
	last := LineContextOf(raw, 2)
	if last.Target != "two" || last.HasAfter1 || !last.HasBefore1 {
		t.Fatalf("last line context = %+v", last)
	}
	for _, n := range []int{0, 3} {
		if ctx := LineContextOf(raw, n); ctx.ErrorMsg == "" {
			t.Fatalf("line %d should be out of range", n)
		}
	}
	if ctx := LineContextOf("", 1); ctx.ErrorMsg == "" {
		t.Fatalf("empty output should have no lines")
	}
}
