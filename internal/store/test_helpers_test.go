package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/seorec/internal/model"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestAnalysis inserts an analysis row and returns its id.
func createTestAnalysis(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.CreateAnalysis(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("CreateAnalysis() failed: %v", err)
	}
	return id
}

// createTestRecommendation creates a recommendation with minimal required fields.
func createTestRecommendation(recID, title string, priority model.Priority) model.Recommendation {
	return model.Recommendation{
		RecID:    recID,
		Title:    title,
		Priority: priority,
	}
}
