// Package export renders the reviewed transcript for download.
package export

import (
	"strings"

	"github.com/xpanvictor/diarize/internal/domains/transcript"
)

// FileName is the artifact name offered to the browser.
const FileName = "diarization.txt"

// Render produces the flat text form: one "<speaker>: <text>" line per
// utterance, newline-joined, in store order.
func Render(entries []transcript.Utterance) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = string(e.Speaker) + ": " + e.Text
	}
	return strings.Join(lines, "\n")
}
