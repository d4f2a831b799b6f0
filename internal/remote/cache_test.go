package remote

import "testing"

func TestSynthesisCachePutLookup(t *testing.T) {
	dir := t.TempDir()
	c, err := NewSynthesisCache(dir)
	if err != nil {
		t.Fatalf("NewSynthesisCache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Lookup("module foo; endmodule"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := c.Put("module foo; endmodule", "foo.sof"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	name, ok := c.Lookup("module foo; endmodule")
	if !ok || name != "foo.sof" {
		t.Fatalf("got (%q, %v), want (foo.sof, true)", name, ok)
	}
}

func TestSynthesisCacheRebuildsFromIndex(t *testing.T) {
	dir := t.TempDir()
	c1, err := NewSynthesisCache(dir)
	if err != nil {
		t.Fatalf("NewSynthesisCache: %v", err)
	}
	if err := c1.Put("module bar; endmodule", "bar.sof"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := NewSynthesisCache(dir)
	if err != nil {
		t.Fatalf("NewSynthesisCache (reopen): %v", err)
	}
	defer c2.Close()
	name, ok := c2.Lookup("module bar; endmodule")
	if !ok || name != "bar.sof" {
		t.Fatalf("after restart: got (%q, %v), want (bar.sof, true)", name, ok)
	}
}

func TestSynthesisKeyRejectsReservedBytes(t *testing.T) {
	if _, err := synthesisKey("fine"); err != nil {
		t.Fatalf("unexpected error for plain text: %v", err)
	}
	if _, err := synthesisKey("bad\x01byte"); err == nil {
		t.Fatalf("expected error for text containing 0x01")
	}
	if _, err := synthesisKey("bad\x00byte"); err == nil {
		t.Fatalf("expected error for text containing NUL")
	}
}
