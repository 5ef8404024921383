package report

import (
	"fmt"
	"strings"
	"time"
)

type ServiceStatus struct {
	Name   string
	Active bool
}

type Facts struct {
	Uptime   string
	Reboots  string
	PublicIP string
	SSHPort  string
	Load     string
	RAM      string
	Conns    string
	Disk     string
	ZFS      string
	SMART    string
	Net      string
	Users    string
	Services []ServiceStatus
}

// FormatUptime renders d the way `uptime -p` does, without the "up" prefix.
func FormatUptime(d time.Duration) string {
	mins := int(d / time.Minute)
	units := []struct {
		name string
		size int
	}{
		{"week", 7 * 24 * 60},
		{"day", 24 * 60},
		{"hour", 60},
		{"minute", 1},
	}
	var parts []string
	for _, u := range units {
		n := mins / u.size
		mins %= u.size
		if n == 0 {
			continue
		}
		s := u.name
		if n != 1 {
			s += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, s))
	}
	if len(parts) == 0 {
		return "0 minutes"
	}
	return strings.Join(parts, ", ")
}

// CountReboots counts `last --time-format iso reboot` entries in the month of now.
func CountReboots(out string, now time.Time) int {
	month := now.Format("2006-01") + "-"
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "reboot") {
			continue
		}
		// the first timestamp on the line is the boot time
		for _, f := range strings.Fields(line) {
			if isISODate(f) {
				if strings.HasPrefix(f, month) {
					n++
				}
				break
			}
		}
	}
	return n
}

func isISODate(s string) bool {
	if len(s) < 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s[:10])
	return err == nil
}

func ParseZpoolStatus(out string) string {
	var state, errs string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case state == "" && strings.HasPrefix(line, "state:"):
			if f := strings.Fields(strings.TrimPrefix(line, "state:")); len(f) > 0 {
				state = f[0]
			}
		case errs == "" && strings.HasPrefix(line, "errors:"):
			errs = strings.TrimSpace(strings.TrimPrefix(line, "errors:"))
		}
	}
	if state == "" {
		return NA
	}
	if errs != "" {
		return state + ", " + errs
	}
	return state
}

// DiskNames picks whole disks from `lsblk -d -n -o NAME,TYPE`.
func DiskNames(out string, limit int) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 2 || f[1] != "disk" {
			continue
		}
		names = append(names, f[0])
		if limit > 0 && len(names) == limit {
			break
		}
	}
	return names
}

func SmartHealth(out string) string {
	switch {
	case strings.Contains(out, "PASSED"):
		return "PASSED"
	case strings.Contains(out, "FAILED"):
		return "FAILED"
	default:
		return "?"
	}
}

// DefaultInterface reads the device out of `ip route show default`.
func DefaultInterface(out string) string {
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		for i := 0; i+1 < len(f); i++ {
			if f[i] == "dev" {
				return f[i+1]
			}
		}
	}
	return ""
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2fGB", float64(b)/1024/1024/1024)
}

// Format builds the webhook message.
func Format(server string, f Facts, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **%s - %s** (%s)\n```\n", server, now.Format("Jan 2006"), now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Uptime: %s | Reboots: %s\n", f.Uptime, f.Reboots)
	fmt.Fprintf(&sb, "IP: %s:%s\n", f.PublicIP, f.SSHPort)
	fmt.Fprintf(&sb, "Load: %s | RAM: %s | Conns: %s\n", f.Load, f.RAM, f.Conns)
	fmt.Fprintf(&sb, "Disk: %s\n", f.Disk)
	fmt.Fprintf(&sb, "ZFS: %s\n", f.ZFS)
	fmt.Fprintf(&sb, "SMART: %s\n", f.SMART)
	fmt.Fprintf(&sb, "Net: %s\n", f.Net)
	fmt.Fprintf(&sb, "Users: %s\n", f.Users)

	svc := make([]string, 0, len(f.Services))
	for _, s := range f.Services {
		mark := "❌"
		if s.Active {
			mark = "✅"
		}
		svc = append(svc, s.Name+mark)
	}
	fmt.Fprintf(&sb, "Services: %s\n", strings.Join(svc, " "))
	sb.WriteString("```")
	return sb.String()
}
