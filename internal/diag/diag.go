// Package diag formats an *ierrors.Error as a caret-annotated source
// excerpt for terminal output, generalizing the teacher's
// internal/errors.CompilerError.Format to the core's own error kinds and
// replacing its raw ANSI escapes with github.com/fatih/color.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/strata-lang/strata/internal/ierrors"
)

var (
	boldRed = color.New(color.FgRed, color.Bold)
	bold    = color.New(color.Bold)
)

// Format renders err with a line/column header, the offending source line
// (if source is supplied) and a caret pointing at the column, followed by
// the message. source may be empty when no textual program is available
// (e.g. a Root built programmatically); the excerpt is then omitted.
func Format(err *ierrors.Error, source string) string {
	var sb strings.Builder

	if err.Pos.File != "" {
		fmt.Fprintf(&sb, "%s: %s:%d:%d\n", err.Kind, err.Pos.File, err.Pos.Line, err.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: line %d:%d\n", err.Kind, err.Pos.Line, err.Pos.Column)
	}

	if line := sourceLine(source, err.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", err.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(err.Pos.Column-1)))
		sb.WriteString(boldRed.Sprint("^"))
		sb.WriteByte('\n')
	}

	sb.WriteString(bold.Sprint(err.Message))
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
