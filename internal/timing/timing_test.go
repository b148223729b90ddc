package timing

import (
	"testing"
	"time"
)

func TestTimerElapsed(t *testing.T) {
	timer := Start()
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.Elapsed()
	if elapsed < 5*time.Millisecond {
		t.Errorf("elapsed %v, want at least 5ms", elapsed)
	}

	// Elapsed keeps growing; it never resets.
	if later := timer.Elapsed(); later < elapsed {
		t.Errorf("second read %v went backwards from %v", later, elapsed)
	}
}
