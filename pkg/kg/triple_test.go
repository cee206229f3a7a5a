package kg

import "testing"

func TestTriple_LiveAt(t *testing.T) {
	closedAt := Version("5")
	tr := Triple{MinVersion: "2", MaxVersion: &closedAt}

	cases := []struct {
		v    Version
		want bool
	}{
		{"1", false},
		{"2", true},
		{"4", true},
		{"5", false},
		{"6", false},
	}
	for _, c := range cases {
		if got := tr.LiveAt(c.v); got != c.want {
			t.Errorf("LiveAt(%s) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestTriple_LiveAt_OpenEnded(t *testing.T) {
	tr := Triple{MinVersion: BlockVersion(2)}
	if !tr.LiveAt(BlockVersion(100)) {
		t.Error("open-ended triple should be live at any version >= min")
	}
	if tr.LiveAt(BlockVersion(1)) {
		t.Error("triple should not be live before its min version")
	}
}

func TestTriple_Close(t *testing.T) {
	tr := Triple{MinVersion: "0"}
	closed := tr.Close("1")
	if closed.MaxVersion == nil || *closed.MaxVersion != "1" {
		t.Fatalf("expected MaxVersion=1, got %v", closed.MaxVersion)
	}

	// Closing an already-closed triple is a no-op.
	reClosed := closed.Close("2")
	if *reClosed.MaxVersion != "1" {
		t.Errorf("re-closing should not change MaxVersion, got %s", *reClosed.MaxVersion)
	}
}

func TestTriple_SameFact(t *testing.T) {
	a := Triple{EntityID: "e1", AttributeID: "name", SpaceID: "s1"}
	b := Triple{EntityID: "e1", AttributeID: "name", SpaceID: "s1", Value: NewTextValue("different")}
	c := Triple{EntityID: "e1", AttributeID: "name", SpaceID: "s2"}

	if !a.SameFact(b) {
		t.Error("triples differing only in value should be the same fact")
	}
	if a.SameFact(c) {
		t.Error("triples in different spaces should not be the same fact")
	}
}

func TestNoopInsert(t *testing.T) {
	live := &Triple{MinVersion: "3"}
	if !NoopInsert(live, "3") {
		t.Error("inserting at the live triple's own min version should be a no-op")
	}
	if NoopInsert(live, "4") {
		t.Error("inserting at a new min version should not be a no-op")
	}
	if NoopInsert(nil, "3") {
		t.Error("nil live triple should never be a no-op")
	}

	closedAt := Version("5")
	closedTriple := &Triple{MinVersion: "3", MaxVersion: &closedAt}
	if NoopInsert(closedTriple, "3") {
		t.Error("a closed triple should never short-circuit an insert")
	}
}
