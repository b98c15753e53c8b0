package domain

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Starship Flight Ten Recap", "starship-flight-ten-recap"},
		{"SpaceX: Falcon 9 lands again!", "spacex-falcon-9-lands-again"},
		{"  spaced   out   title  ", "spaced-out-title"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "starship "
	}
	slug := Slug(long)
	if len(slug) > 80 {
		t.Fatalf("slug exceeds cap: %d chars", len(slug))
	}
	if slug[len(slug)-1] == '-' {
		t.Fatalf("slug must not end with a dash: %q", slug)
	}
}

func TestContentKey(t *testing.T) {
	c := Content{ExternalID: "a1", Provenance: Provenance{Provider: "newsA"}}
	if c.Key() != "newsA/a1" {
		t.Fatalf("unexpected key: %s", c.Key())
	}
}
