package ids

import "testing"

func TestGeneratorUniqueness(t *testing.T) {
	var g Generator
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		for _, id := range []ID{g.NewFile(), g.NewTag(), g.NewFilter(), g.NewDistinct()} {
			if seen[id] {
				t.Fatalf("duplicate id generated: %v", id)
			}
			seen[id] = true
		}
	}
}

func TestIsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Fatal("zero value ID should report IsZero() == true")
	}

	var g Generator
	id := g.NewFile()
	if id.IsZero() {
		t.Fatalf("generated id %v should not be zero", id)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		File:     "file",
		Tag:      "tag",
		Filter:   "filter",
		Distinct: "distinct",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestIDString(t *testing.T) {
	id := ID{Kind: Tag, Value: 7}
	if got := id.String(); got != "tag:7" {
		t.Errorf("ID.String() = %q, want %q", got, "tag:7")
	}
}
