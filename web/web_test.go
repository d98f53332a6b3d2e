package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDistHasIndex(t *testing.T) {
	data, err := fs.ReadFile(Dist(), "index.html")
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(data), "<canvas") {
		t.Error("index.html has no canvas")
	}
}
