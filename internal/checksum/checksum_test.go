package checksum

import "testing"

func TestSumStable(t *testing.T) {
	// sha256("") is well known.
	if got := Sum(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(\"\") = %s", got)
	}
	if Sum("a") == Sum("b") {
		t.Error("different content should differ")
	}
}

func TestMatches(t *testing.T) {
	sum := Sum("hello")
	cases := []struct {
		ifMatch string
		want    bool
	}{
		{"", true},
		{"*", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{Sum("other"), false},
	}
	for _, c := range cases {
		if got := Matches(c.ifMatch, "hello"); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.ifMatch, got, c.want)
		}
	}
}
