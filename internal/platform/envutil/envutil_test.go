package envutil

import (
	"testing"
	"time"
)

func TestBool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"yes", false, true},
		{"OFF", true, false},
		{"garbage", true, true},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", tc.raw)
		if got := Bool("ENVUTIL_TEST_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q, %v): want=%v got=%v", tc.raw, tc.def, tc.want, got)
		}
	}
}

func TestIntAndSeconds(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "nope")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_SECS", "-5")
	if got := Seconds("ENVUTIL_TEST_SECS", 3); got != 0 {
		t.Fatalf("Seconds negative: want=0 got=%s", got)
	}
	t.Setenv("ENVUTIL_TEST_SECS", "")
	if got := Seconds("ENVUTIL_TEST_SECS", 3); got != 3*time.Second {
		t.Fatalf("Seconds default: want=3s got=%s", got)
	}
}
