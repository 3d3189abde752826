package server

import "testing"

// TestSearchCaseInsensitiveSubstring verifies the query matches anywhere in
// the text regardless of case.
func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	snapshot := []Message{
		{ID: 1, Text: "Hello World"},
		{ID: 2, Text: "goodbye"},
		{ID: 3, Text: "say hello again"},
	}

	results := searchMessages(snapshot, "HELLO")
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].ID != 1 || results[1].ID != 3 {
		t.Errorf("Expected messages 1 and 3, got %d and %d", results[0].ID, results[1].ID)
	}
}

// TestSearchSkipsFileMessages verifies messages without a text body never
// match, even for an empty-feeling query.
func TestSearchSkipsFileMessages(t *testing.T) {
	snapshot := []Message{
		{ID: 1, IsFile: true, FileName: "report.pdf"},
		{ID: 2, Text: "the report is attached"},
	}

	results := searchMessages(snapshot, "report")
	if len(results) != 1 || results[0].ID != 2 {
		t.Errorf("Expected only the text message, got %v", results)
	}
}

// TestSearchNoMatches verifies an empty result set is returned as an empty
// slice, not nil, so it serializes as a JSON array.
func TestSearchNoMatches(t *testing.T) {
	results := searchMessages([]Message{{ID: 1, Text: "hello"}}, "xyz")
	if results == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
}
