package timeouts

import (
	"testing"
	"time"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	defer Reset()

	Configure(Config{Medium: 42 * time.Second})

	if got := Medium(); got != 42*time.Second {
		t.Errorf("Medium: got %v, want %v", got, 42*time.Second)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short: got %v, want default %v", got, DefaultShort)
	}
	if got := LockWait(); got != DefaultLockWait {
		t.Errorf("LockWait: got %v, want default %v", got, DefaultLockWait)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer Reset()

	t.Setenv("TIMEOUT_LONG", "1m")
	t.Setenv("TIMEOUT_LOCK_WAIT", "750ms")
	t.Setenv("TIMEOUT_SHORT", "not-a-duration")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("configured: got %d, want 2", n)
	}
	if got := Long(); got != time.Minute {
		t.Errorf("Long: got %v, want 1m", got)
	}
	if got := LockWait(); got != 750*time.Millisecond {
		t.Errorf("LockWait: got %v, want 750ms", got)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short: got %v, want default", got)
	}
}
