package audit

import (
	"sync"
	"testing"

	"github.com/bridgemesh/core/corectx/logging"
	"github.com/bridgemesh/core/identifier"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestChainDispatchesToEveryHook(t *testing.T) {
	rec := &recordingSink{}
	chain := NewChain(NewSinkAspect(rec, 100))

	event, err := NewEvent(PointBridgeRegistered, map[string]any{"language": "py"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	chain.RunBefore(event)
	chain.RunAfter(event)
	chain.RunOnError(event)

	if rec.count() != 3 {
		t.Fatalf("events = %d, want 3", rec.count())
	}
}

func TestChainSwallowsPanickingAspect(t *testing.T) {
	chain := NewChain(&panickingAspect{})
	event, _ := NewEvent(PointErrorRaised, nil)
	chain.RunBefore(event) // must not propagate the panic
}

type panickingAspect struct{}

func (p *panickingAspect) Order() int   { return 1 }
func (p *panickingAspect) New() Aspect  { return p }
func (p *panickingAspect) Before(Event) error {
	panic("boom")
}

var _ BeforeAspect = (*panickingAspect)(nil)

func TestLogSinkEmitsWithoutError(t *testing.T) {
	sink := NewLogSink(logging.NewNop(), identifier.FormatUUIDUpper)
	event, _ := NewEvent(PointPolicyDecision, map[string]any{"decision": "allow"})
	if err := sink.Emit(event); err != nil {
		t.Fatalf("emit: %v", err)
	}
}
