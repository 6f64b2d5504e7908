package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/haskoe/beancount-dansk/output"
)

// slowThreshold marks operations worth highlighting in styled reports.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	Total: 125ms
//	├─ Load: 85ms
//	│  ├─ Parse main.beancount: 45ms
//	│  └─ Merge ASTs: 5ms
//	└─ Process Ledger: 40ms
//
// A nil styles renders plain text.
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	timing := formatDuration(root.end.Sub(root.start))
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, timing)

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	treeChars := prefix + branch
	timing := formatDuration(duration)
	if styles != nil {
		treeChars = styles.Dim(treeChars)
		timing = styles.Timing(timing, duration >= slowThreshold)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", treeChars, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
