package scrape

import "testing"

func TestParseSuggestions(t *testing.T) {
	t.Run("completions", func(t *testing.T) {
		got, err := ParseSuggestions([]byte(`["lofi",["lofi hip hop","lofi girl","lofi beats"]]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 || got[0] != "lofi hip hop" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty completions", func(t *testing.T) {
		got, err := ParseSuggestions([]byte(`["zzz",[]]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want none", got)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if _, err := ParseSuggestions([]byte(`{"not":"an array"`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing completion element", func(t *testing.T) {
		got, err := ParseSuggestions([]byte(`["solo"]`))
		if err != nil || got != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", got, err)
		}
	})
}
