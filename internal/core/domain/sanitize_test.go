package domain

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  John  ", want: "John"},
		{in: "<script>alert(1)</script>", want: "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{in: `Tom & "Jerry"`, want: "Tom &amp; &quot;Jerry&quot;"},
		{in: "O'Brien", want: "O&#039;Brien"},
		{in: "Jo\x00hn", want: "John"},
		{in: "\x00\t John \n\x0b", want: "John"},
		{in: "", want: ""},
		{in: "\xff\xfe", want: ""},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeUnescapeRoundTrip(t *testing.T) {
	in := `Mary-Jane O'Brien <b>&</b>`
	if got := Unescape(Sanitize(in)); got != in {
		t.Fatalf("round trip mismatch: got %q want %q", got, in)
	}
}

func TestSanitizeNeverLeaksMarkup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "input")
		out := Sanitize(in)
		if strings.ContainsAny(out, "<>\"'\x00") {
			t.Fatalf("sanitized %q still contains markup or NUL: %q", in, out)
		}
		if out != strings.Trim(out, " \t\n\r\x0b") {
			t.Fatalf("sanitized %q is not trimmed: %q", in, out)
		}
	})
}
