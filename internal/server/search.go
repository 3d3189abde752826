// Package server implements the read-only message search over a log snapshot.
package server

import "strings"

// searchMessages filters the snapshot for messages whose text contains the
// query, case-insensitively. Messages without a text body (files) never match.
func searchMessages(snapshot []Message, query string) []Message {
	needle := strings.ToLower(query)
	results := make([]Message, 0)
	for _, msg := range snapshot {
		if msg.Text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Text), needle) {
			results = append(results, msg)
		}
	}
	return results
}
