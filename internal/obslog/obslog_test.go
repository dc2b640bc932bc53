package obslog

import "testing"

func TestNewVerboseEnablesDebugLevel(t *testing.T) {
	logger, err := New(true)
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Core().Enabled(-1) { // zapcore.DebugLevel == -1
		t.Fatal("expected debug level enabled when verbose=true")
	}
}

func TestNewQuietDisablesDebugLevel(t *testing.T) {
	logger, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatal("expected debug level disabled when verbose=false")
	}
}

func TestNopDiscardsWithoutPanicking(t *testing.T) {
	logger := Nop()
	StratumRound(logger, 0, 0, true)
	SaturationDone(logger, 1, nil)
}
