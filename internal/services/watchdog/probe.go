package watchdog

import (
	"context"
	"net"
	"strconv"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"

	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

type ICMP interface {
	Ping(ctx context.Context, address string) bool
}

type TCP interface {
	Check(ctx context.Context, address string, port int) bool
}

type PingConfig struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

// Pinger sends Count echo requests and succeeds when at least one reply arrives.
// Timeout is not a per-reply wait: the run is bounded as a whole by Deadline,
// and a target that drops every reply keeps Ping busy for the full deadline.
type Pinger struct {
	cfg PingConfig
	log *zap.Logger
}

func NewPinger(cfg PingConfig) *Pinger {
	if cfg.Count <= 0 {
		cfg.Count = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Pinger{cfg: cfg, log: zap.L().With(zap.String("component", "probe.icmp"))}
}

func (p *Pinger) WithLogger(l *zap.Logger) *Pinger {
	if l == nil {
		return p
	}
	cp := *p
	cp.log = l.With(zap.String("component", "probe.icmp"))
	return &cp
}

// Deadline bounds the whole ping run.
func (p *Pinger) Deadline() time.Duration {
	return time.Duration(p.cfg.Count)*p.cfg.Timeout + 10*time.Second
}

func (p *Pinger) Ping(ctx context.Context, address string) bool {
	pg, err := probing.NewPinger(address)
	if err != nil {
		p.log.Warn("ping setup failed", zap.String("address", address), zap.Error(err))
		return false
	}
	pg.Count = p.cfg.Count
	pg.Timeout = p.Deadline()
	pg.SetPrivileged(p.cfg.Privileged)

	if err := pg.RunWithContext(ctx); err != nil {
		p.log.Warn("ping failed", zap.String("address", address), zap.Error(err))
		return false
	}
	st := pg.Statistics()
	p.log.Debug("ping done",
		zap.String("address", address),
		zap.Int("sent", st.PacketsSent),
		zap.Int("recv", st.PacketsRecv),
	)
	return st.PacketsRecv > 0
}

type TCPProber struct {
	d   net.Dialer
	log *zap.Logger
}

func NewTCPProber(timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPProber{
		d:   net.Dialer{Timeout: timeout},
		log: zap.L().With(zap.String("component", "probe.tcp")),
	}
}

func (t *TCPProber) WithLogger(l *zap.Logger) *TCPProber {
	if l == nil {
		return t
	}
	cp := *t
	cp.log = l.With(zap.String("component", "probe.tcp"))
	return &cp
}

func (t *TCPProber) Check(ctx context.Context, address string, port int) bool {
	conn, err := t.d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		t.log.Debug("tcp connect failed", zap.String("address", address), zap.Int("port", port), zap.Error(err))
		return false
	}
	_ = conn.Close()
	return true
}

// Probe runs one ping and one connect per port.
type Probe struct {
	ICMP ICMP
	TCP  TCP
}

var _ wd.Prober = Probe{}

func (p Probe) PerformAllChecks(ctx context.Context, address string, ports []int) wd.CheckResult {
	res := wd.CheckResult{
		PingOK: p.ICMP.Ping(ctx, address),
		TCP:    make([]wd.PortResult, 0, len(ports)),
	}
	for _, port := range ports {
		res.TCP = append(res.TCP, wd.PortResult{Port: port, OK: p.TCP.Check(ctx, address, port)})
	}
	return res
}
