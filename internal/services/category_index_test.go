package services

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/findajob/jobboard/internal/models"
)

func TestNewCategoryIndexDisabled(t *testing.T) {
	enabled := newStubOracle(&stubGenerator{})

	tests := []struct {
		name   string
		url    string
		oracle Oracle
	}{
		{name: "no url", url: "", oracle: enabled},
		{name: "no oracle", url: "http://localhost:6334", oracle: nil},
		{name: "disabled oracle", url: "http://localhost:6334", oracle: newStubOracle(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := NewCategoryIndex(QdrantIndexConfig{URL: tt.url, Collection: "job_categories"}, tt.oracle, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if index.Enabled() {
				t.Fatal("expected a disabled index")
			}
			if err := index.InitCollection(t.Context()); err != nil {
				t.Fatalf("disabled InitCollection: %v", err)
			}
			if n, err := index.Sync(t.Context(), []models.JobCategory{{ID: 1, Name: "ICT"}}); n != 0 || err != nil {
				t.Fatalf("disabled Sync returned %d, %v", n, err)
			}
			if got := index.Nearest(t.Context(), "python developer"); got != nil {
				t.Fatalf("disabled Nearest returned %v", got)
			}
		})
	}
}

func TestCategoryEmbeddingText(t *testing.T) {
	withKeywords := models.JobCategory{Name: "ICT / Computer", Keywords: []string{"developer", "python"}}
	if got := CategoryEmbeddingText(withKeywords); got != "ICT / Computer: developer, python" {
		t.Fatalf("unexpected embedding text %q", got)
	}

	bare := models.JobCategory{Name: "General"}
	if got := CategoryEmbeddingText(bare); got != "General" {
		t.Fatalf("unexpected embedding text %q", got)
	}
}

// A Qdrant that accepts connections but never answers must not stall search.
func TestNearestIsBoundedByTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	index, err := NewCategoryIndex(QdrantIndexConfig{
		URL:                    "http://" + ln.Addr().String(),
		Collection:             "job_categories",
		Timeout:                50 * time.Millisecond,
		SkipCompatibilityCheck: true,
	}, newStubOracle(&stubGenerator{}), nil)
	if err != nil {
		t.Fatalf("NewCategoryIndex: %v", err)
	}

	done := make(chan []string, 1)
	go func() { done <- index.Nearest(context.Background(), "python developer") }()

	select {
	case got := <-done:
		if got != nil {
			t.Fatalf("expected no categories from a silent index, got %v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Nearest did not honour its timeout")
	}
}
