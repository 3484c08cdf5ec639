package util

import "testing"

func TestContentHash(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := ContentHash(nil); got != empty {
		t.Errorf("Expected %s for nil content, got %s", empty, got)
	}
	if ContentHash([]byte("a")) == ContentHash([]byte("b")) {
		t.Error("Expected different content to hash differently")
	}
	if ContentHashString("post") != ContentHash([]byte("post")) {
		t.Error("Expected string and byte hashes to agree")
	}
	if len(ContentHashString("anything")) != 64 {
		t.Error("Expected hex encoded sha256 of 64 chars")
	}
}
