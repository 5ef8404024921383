package watchdog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	wd "github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

func TestEvaluateHealth_TruthTable(t *testing.T) {
	for _, ports := range [][]int{nil, {22}, {80, 443}, {22, 80, 443}} {
		n := len(ports)
		for _, ping := range []bool{false, true} {
			for mask := 0; mask < 1<<n; mask++ {
				res := wd.CheckResult{PingOK: ping}
				anyTCP := false
				var failed []int
				for i, p := range ports {
					ok := mask&(1<<i) != 0
					anyTCP = anyTCP || ok
					if !ok {
						failed = append(failed, p)
					}
					res.TCP = append(res.TCP, wd.PortResult{Port: p, OK: ok})
				}

				v := EvaluateHealth(res)

				switch {
				case ping && anyTCP:
					assert.Equal(t, wd.Verdict{Healthy: true, Reason: wd.ReasonAllPassed}, v)
				case ping:
					assert.Equal(t, wd.Verdict{Healthy: true, Reason: wd.ReasonPingOnly}, v)
				case anyTCP:
					assert.Equal(t, wd.Verdict{Healthy: true, Reason: wd.ReasonTCPOnly}, v)
				default:
					assert.False(t, v.Healthy)
					assert.Equal(t, wd.AllFailedReason(failed), v.Reason)
				}
			}
		}
	}
}

func TestEvaluateHealth_Reasons(t *testing.T) {
	v := EvaluateHealth(down(80, 443))
	assert.Equal(t, "All checks failed (ping: FAIL, TCP ports 80, 443: FAIL)", v.Reason)

	v = EvaluateHealth(wd.CheckResult{})
	assert.False(t, v.Healthy)
	assert.Equal(t, "All checks failed (ping: FAIL, TCP ports : FAIL)", v.Reason)

	v = EvaluateHealth(wd.CheckResult{PingOK: true})
	assert.Equal(t, wd.ReasonPingOnly, v.Reason)
}
