package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type ctxResult struct {
	*MockResult
	ctx context.Context
}

func (r *ctxResult) Context() context.Context { return r.ctx }

type sealedResult struct {
	*MockResult
	mu     sync.Mutex
	sealed bool
}

func (r *sealedResult) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *sealedResult) isSealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

func sleeper(d time.Duration, code int) Handler {
	return func(Result) (int, error) {
		time.Sleep(d)
		return code, nil
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		handler  Handler
		wantCode int
		timedOut bool
	}{
		{"completes", time.Second, sleeper(0, 4), 4, false},
		{"expires", 10 * time.Millisecond, sleeper(500*time.Millisecond, 0), 1, true},
		{"disabled", 0, sleeper(5*time.Millisecond, 2), 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Timeout(tt.timeout)(tt.handler)(NewMockResult())
			if code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, code)
			}
			var te *TimeoutError
			if errors.As(err, &te) != tt.timedOut {
				t.Fatalf("Expected timeout %v, got err %v", tt.timedOut, err)
			}
			if tt.timedOut && te.Command != "test" {
				t.Errorf("Expected command 'test', got %q", te.Command)
			}
		})
	}
}

func TestTimeoutSealsExpiredResult(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		handler    Handler
		wantSealed bool
	}{
		{"expired", 10 * time.Millisecond, sleeper(200*time.Millisecond, 0), true},
		{"completed", time.Second, sleeper(0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &sealedResult{MockResult: NewMockResult()}
			_, _ = Timeout(tt.timeout)(tt.handler)(res)
			if got := res.isSealed(); got != tt.wantSealed {
				t.Errorf("Expected sealed %v, got %v", tt.wantSealed, got)
			}
		})
	}
}

func TestTimeoutRecoversPanic(t *testing.T) {
	h := func(Result) (int, error) { panic("boom") }
	_, err := Timeout(time.Second)(h)(NewMockResult())
	var re *RecoveryError
	if !errors.As(err, &re) {
		t.Fatalf("Expected RecoveryError, got %v", err)
	}
}

func TestTimeoutHonoursParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := &ctxResult{MockResult: NewMockResult(), ctx: ctx}

	_, err := Timeout(time.Second)(sleeper(200*time.Millisecond, 0))(res)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestTimeoutPerCommand(t *testing.T) {
	mw := TimeoutPerCommand(map[string]time.Duration{"test": 10 * time.Millisecond}, time.Minute)
	_, err := mw(sleeper(500*time.Millisecond, 0))(NewMockResult())
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if te.Duration != 10*time.Millisecond {
		t.Errorf("Expected 10ms, got %v", te.Duration)
	}
}

func TestTimeoutFromOption(t *testing.T) {
	res := NewMockResult()
	res.SetString("timeout", "10ms")
	_, err := TimeoutFromOption("timeout", time.Minute)(sleeper(500*time.Millisecond, 0))(res)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}

	res.SetString("timeout", "soon")
	code, err := TimeoutFromOption("timeout", time.Second)(sleeper(0, 0))(res)
	if err != nil || code != 0 {
		t.Errorf("Expected fallback to default, got %d, %v", code, err)
	}
}
