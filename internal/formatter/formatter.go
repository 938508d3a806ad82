// package formatter writes run artifacts: the unmatched-tracks sidecar
// file and plain-text report renderings.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/NocturnalNick/spotify2youtube/internal/shared"
)

// UnmatchedEntry is one sidecar record: a track absent from the final
// destination playlist and why.
type UnmatchedEntry struct {
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
	Reason  string   `json:"reason"`
}

// Sidecar reasons.
const (
	ReasonNoMatch     = "no_match"
	ReasonAmbiguous   = "ambiguous"
	ReasonSkipped     = "skipped"
	ReasonWriteFailed = "write_failed"
)

// WriteUnmatchedReport writes the sidecar file as pretty-printed JSON,
// overwriting any previous file at path. The entry order follows source
// playlist order.
func WriteUnmatchedReport(entries []UnmatchedEntry, path string) error {
	if entries == nil {
		entries = []UnmatchedEntry{}
	}

	data, err := shared.MarshalJSON(entries, true)
	if err != nil {
		return fmt.Errorf("failed to marshal unmatched report: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write unmatched report: %w", err)
	}

	return nil
}

// UnmatchedToCSV renders sidecar entries as CSV with columns Title,
// Artists, Reason. Artists are joined with "; ".
func UnmatchedToCSV(entries []UnmatchedEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Title", "Artists", "Reason"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{entry.Title, strings.Join(entry.Artists, "; "), entry.Reason}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// UnmatchedToText renders sidecar entries as a readable list for terminal
// output.
func UnmatchedToText(entries []UnmatchedEntry) string {
	if len(entries) == 0 {
		return "All tracks transferred.\n"
	}

	var buf bytes.Buffer
	for i, entry := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, strings.Join(entry.Artists, ", "), entry.Title, entry.Reason))
	}
	return buf.String()
}
