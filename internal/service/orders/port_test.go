package orders

import (
	"errors"
	"testing"
)

func TestFreePortSkipsTaken(t *testing.T) {
	port, err := FreePort([]int{27000, 27002}, 27000, 27100)
	if err != nil {
		t.Fatalf("FreePort: %v", err)
	}
	if port != 27004 {
		t.Fatalf("port = %d, want 27004", port)
	}
}

func TestFreePortEmptyRange(t *testing.T) {
	port, err := FreePort(nil, 27000, 27100)
	if err != nil {
		t.Fatalf("FreePort: %v", err)
	}
	if port != 27000 {
		t.Fatalf("port = %d, want 27000", port)
	}
}

func TestFreePortOddMinRoundsUp(t *testing.T) {
	port, err := FreePort(nil, 27001, 27100)
	if err != nil {
		t.Fatalf("FreePort: %v", err)
	}
	if port != 27002 {
		t.Fatalf("port = %d, want 27002", port)
	}
}

func TestFreePortExhausted(t *testing.T) {
	taken := []int{27000, 27002, 27004}
	_, err := FreePort(taken, 27000, 27004)
	if !errors.Is(err, ErrNoFreePort) {
		t.Fatalf("err = %v, want ErrNoFreePort", err)
	}
}

func TestFreePortIgnoresOddTaken(t *testing.T) {
	// Odd ports never get assigned, so odd entries must not block the range.
	port, err := FreePort([]int{27001}, 27000, 27004)
	if err != nil {
		t.Fatalf("FreePort: %v", err)
	}
	if port != 27000 {
		t.Fatalf("port = %d, want 27000", port)
	}
}
