package watchdog

import wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"

// EvaluateHealth treats the target as up when either probe family answers.
func EvaluateHealth(r wd.CheckResult) wd.Verdict {
	tcpOK := r.AnyTCPOK()
	switch {
	case r.PingOK && tcpOK:
		return wd.Verdict{Healthy: true, Reason: wd.ReasonAllPassed}
	case r.PingOK:
		return wd.Verdict{Healthy: true, Reason: wd.ReasonPingOnly}
	case tcpOK:
		return wd.Verdict{Healthy: true, Reason: wd.ReasonTCPOnly}
	default:
		return wd.Verdict{Healthy: false, Reason: wd.AllFailedReason(r.FailedPorts())}
	}
}
