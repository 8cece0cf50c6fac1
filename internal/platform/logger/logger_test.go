package logger

import "testing"

func TestSanitizeValueRedactsStudentIdentity(t *testing.T) {
	cases := []struct {
		key  string
		want interface{}
	}{
		{"sin", "[REDACTED]"},
		{"student_sin", "[REDACTED]"},
		{"birth_date", "[REDACTED]"},
		{"last_name", "[REDACTED]"},
		{"processing", "abc"},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, "abc"); got != tc.want {
			t.Fatalf("sanitizeValue(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestSanitizeValueHashesIDs(t *testing.T) {
	got, ok := sanitizeValue("student_id", "8a7c").(string)
	if !ok || len(got) < len("hash:") || got[:5] != "hash:" {
		t.Fatalf("expected hashed student_id, got %v", got)
	}
}
