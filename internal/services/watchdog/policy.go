package watchdog

import (
	"context"
	"time"

	"go.uber.org/zap"

	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
	"github.com/NordCoder/hostwatch/internal/domain/notification"
)

type PolicyConfig struct {
	FailuresBeforeAlert int
	Cooldown            time.Duration
	Source              string
}

// Decision is what the policy did with one verdict.
// Kind is empty when nothing was sent.
type Decision struct {
	State    wd.State
	Kind     notification.Kind
	Message  string
	Sent     bool
	ExitCode int
}

type AlertPolicy struct {
	cfg    PolicyConfig
	clock  wd.Clock
	sender wd.AlertSender
	log    *zap.Logger
}

func NewAlertPolicy(cfg PolicyConfig, clock wd.Clock, sender wd.AlertSender) *AlertPolicy {
	if cfg.FailuresBeforeAlert <= 0 {
		cfg.FailuresBeforeAlert = 2
	}
	return &AlertPolicy{
		cfg:    cfg,
		clock:  clock,
		sender: sender,
		log:    zap.L().With(zap.String("component", "policy")),
	}
}

func (p *AlertPolicy) WithLogger(l *zap.Logger) *AlertPolicy {
	if l == nil {
		return p
	}
	cp := *p
	cp.log = l.With(zap.String("component", "policy"))
	return &cp
}

func (p *AlertPolicy) Apply(ctx context.Context, prev wd.State, t wd.Target, v wd.Verdict) Decision {
	now := p.clock.Now()
	st := prev
	st.LastCheckTime = &now

	if v.Healthy {
		d := Decision{ExitCode: 0}
		if prev.WasUnhealthy() && prev.ConsecutiveFailures >= p.cfg.FailuresBeforeAlert {
			p.log.Info("target recovered, sending recovery notification")
			d.Kind = notification.KindRecovery
			d.Message = FormatRecovery(t.Name, p.cfg.Source, t.Address, now)
			d.Sent = p.sender.SendAlert(ctx, d.Message)
			if !d.Sent {
				p.log.Warn("recovery notification failed to send")
			}
		}
		st.ConsecutiveFailures = 0
		status := wd.StatusHealthy
		st.LastStatus = &status
		d.State = st
		return d
	}

	d := Decision{ExitCode: 1}
	st.ConsecutiveFailures++
	p.log.Info("consecutive failed runs", zap.Int("failures", st.ConsecutiveFailures))

	cooling := prev.InCooldown(now, p.cfg.Cooldown)
	switch {
	case st.ConsecutiveFailures >= p.cfg.FailuresBeforeAlert && !cooling:
		p.log.Info("threshold reached, sending alert")
		d.Kind = notification.KindAlert
		d.Message = FormatAlert(t.Name, p.cfg.Source, t.Address, v.Reason, st.ConsecutiveFailures, now)
		d.Sent = p.sender.SendAlert(ctx, d.Message)
		if d.Sent {
			st.LastAlertTime = &now
			p.log.Info("alert sent")
		} else {
			p.log.Error("alert failed to send")
		}
	case cooling:
		p.log.Info("in cooldown, skipping alert", zap.Time("last_alert", *prev.LastAlertTime))
	default:
		p.log.Info("below alert threshold",
			zap.Int("failures", st.ConsecutiveFailures),
			zap.Int("threshold", p.cfg.FailuresBeforeAlert),
		)
	}

	status := wd.StatusUnhealthy
	st.LastStatus = &status
	d.State = st
	return d
}
