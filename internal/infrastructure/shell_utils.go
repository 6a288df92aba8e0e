package infrastructure

import "strings"

// shellSpecials are the characters that force quoting when a command line is
// echoed into the logs.
const shellSpecials = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// ShellEscape quotes s so a logged command line can be pasted back into a
// shell unchanged. exec.Command itself never needs this; it exists purely
// for log readability.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecials) {
		return s
	}
	// Single-quote the value. An embedded single quote closes the quote,
	// emits a double-quoted quote, and reopens.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders a binary and its arguments as one loggable line.
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
