package watchdog

import (
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

func FormatAlert(name, source, address, reason string, failures int, at time.Time) string {
	return fmt.Sprintf("🔴 **%s MAY BE DOWN**\n"+
		"```\n"+
		"Source:      %s Watchdog\n"+
		"Target:      %s\n"+
		"Reason:      %s\n"+
		"Failed runs: %d consecutive\n"+
		"Time:        %s\n"+
		"```", name, source, address, reason, failures, at.Format(timeLayout))
}

func FormatRecovery(name, source, address string, at time.Time) string {
	return fmt.Sprintf("🟢 **%s is back UP**\n"+
		"```\n"+
		"Source: %s Watchdog\n"+
		"Target: %s\n"+
		"Time:   %s\n"+
		"```", name, source, address, at.Format(timeLayout))
}
