package watchdog

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/hostwatch/internal/domain/notification"
	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

type scriptedProber struct {
	results []wd.CheckResult
	calls   int
}

func (p *scriptedProber) PerformAllChecks(_ context.Context, _ string, _ []int) wd.CheckResult {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	return p.results[i]
}

func down(ports ...int) wd.CheckResult {
	r := wd.CheckResult{}
	for _, p := range ports {
		r.TCP = append(r.TCP, wd.PortResult{Port: p})
	}
	return r
}

func up() wd.CheckResult { return wd.CheckResult{PingOK: true} }

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type recordingSender struct {
	ok   bool
	msgs []string
}

func (s *recordingSender) SendAlert(_ context.Context, m string) bool {
	s.msgs = append(s.msgs, m)
	return s.ok
}

type memStore struct {
	st    wd.State
	saves int
}

func (m *memStore) Load(context.Context) wd.State { return m.st }
func (m *memStore) Save(_ context.Context, st wd.State) error {
	m.st = st
	m.saves++
	return nil
}

type sleepRecorder struct {
	slept []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return s.err
}

type memJournal struct{ got []*notification.Notification }

func (j *memJournal) Record(_ context.Context, n *notification.Notification) error {
	j.got = append(j.got, n)
	return nil
}

type memEvents struct {
	mu  sync.Mutex
	got []notification.Event
}

func (e *memEvents) Publish(_ context.Context, ev notification.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return nil
}

// cancelOnAttempt cancels the cycle context while running attempt `on`.
type cancelOnAttempt struct {
	scriptedProber
	on     int
	cancel context.CancelFunc
}

func (p *cancelOnAttempt) PerformAllChecks(ctx context.Context, address string, ports []int) wd.CheckResult {
	if p.calls+1 == p.on {
		p.cancel()
	}
	return p.scriptedProber.PerformAllChecks(ctx, address, ports)
}
