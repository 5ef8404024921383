package watchdog

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type PortResult struct {
	Port int  `json:"port"`
	OK   bool `json:"ok"`
}

// CheckResult is the outcome of one probe attempt. TCP keeps the configured port order.
type CheckResult struct {
	PingOK bool         `json:"ping_ok"`
	TCP    []PortResult `json:"tcp"`
}

func (r CheckResult) AnyTCPOK() bool {
	for _, p := range r.TCP {
		if p.OK {
			return true
		}
	}
	return false
}

func (r CheckResult) FailedPorts() []int {
	out := make([]int, 0, len(r.TCP))
	for _, p := range r.TCP {
		if !p.OK {
			out = append(out, p.Port)
		}
	}
	return out
}

type Verdict struct {
	Healthy bool   `json:"healthy"`
	Reason  string `json:"reason"`
}

const (
	ReasonAllPassed = "All checks passed"
	ReasonPingOnly  = "Ping OK (TCP ports unresponsive)"
	ReasonTCPOnly   = "TCP OK (ping unresponsive)"
)

func AllFailedReason(ports []int) string {
	s := make([]string, 0, len(ports))
	for _, p := range ports {
		s = append(s, fmt.Sprint(p))
	}
	return fmt.Sprintf("All checks failed (ping: FAIL, TCP ports %s: FAIL)", strings.Join(s, ", "))
}

// State survives between invocations. The zero value is the state of a first run.
type State struct {
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastAlertTime       *time.Time `json:"last_alert_time"`
	LastCheckTime       *time.Time `json:"last_check_time"`
	LastStatus          *Status    `json:"last_status"`
}

func (s State) InCooldown(now time.Time, cooldown time.Duration) bool {
	if s.LastAlertTime == nil {
		return false
	}
	return now.Before(s.LastAlertTime.Add(cooldown))
}

func (s State) WasUnhealthy() bool {
	return s.LastStatus != nil && *s.LastStatus == StatusUnhealthy
}

type Target struct {
	Name    string
	Address string
	Ports   []int
}
