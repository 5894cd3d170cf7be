package identity

import "testing"

func TestCanonicalAcceptsDashlessIdentifiers(t *testing.T) {
	got := Canonical("  1C2B3A4D5E6F47808192A3B4C5D6E7F8 ")
	want := "1c2b3a4d-5e6f-4780-8192-a3b4c5d6e7f8"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !Equal("1c2b3a4d5e6f47808192a3b4c5d6e7f8", want) {
		t.Fatal("expected dashless and dashed forms to compare equal")
	}
}

func TestCanonicalKeepsOpaqueIdentifiers(t *testing.T) {
	if got := Canonical(" p1 "); got != "p1" {
		t.Fatalf("expected opaque id to be trimmed only, got %q", got)
	}
	if Equal("", "") {
		t.Fatal("empty identifiers must never compare equal")
	}
}

func TestDeterministicRowKeys(t *testing.T) {
	a := RenderEntryUUID("p1", "HTML")
	b := RenderEntryUUID(" p1", "html")
	if a != b {
		t.Fatalf("expected stable render entry keys, got %s and %s", a, b)
	}
	if a == RenderEntryUUID("p1", "text") {
		t.Fatal("expected render kinds to produce distinct keys")
	}

	natural := "1c2b3a4d-5e6f-4780-8192-a3b4c5d6e7f8"
	if got := ResourceUUID(natural).String(); got != natural {
		t.Fatalf("expected 128-bit ids to be used verbatim, got %s", got)
	}
	if ResourceUUID("p1") == ResourceUUID("p2") {
		t.Fatal("expected opaque ids to map to distinct keys")
	}
}
