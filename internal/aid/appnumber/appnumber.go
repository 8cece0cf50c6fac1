// Package appnumber formats application numbers: the program-year prefix followed by a
// zero-padded counter, always the same total width.
package appnumber

import (
	"fmt"
	"strings"
)

// SequenceName is the per-program-year counter name used for application numbers.
func SequenceName(prefix string) string {
	return "Program_Year_" + strings.TrimSpace(prefix)
}

// Format renders prefix+counter padded to width. It fails when the counter does not fit.
func Format(prefix string, counter int64, width int) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("application number prefix is required")
	}
	if counter <= 0 {
		return "", fmt.Errorf("application number counter must be positive, got %d", counter)
	}
	digits := width - len(prefix)
	if digits <= 0 {
		return "", fmt.Errorf("application number width %d leaves no room after prefix %q", width, prefix)
	}
	n := fmt.Sprintf("%0*d", digits, counter)
	if len(n) > digits {
		return "", fmt.Errorf("application number counter %d exceeds %d digits for prefix %q", counter, digits, prefix)
	}
	return prefix + n, nil
}
