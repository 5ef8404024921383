package report

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
)

type fakeCmd map[string]string

func (f fakeCmd) Run(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f[key]
	if !ok {
		return "", errors.New("not found: " + key)
	}
	return out, nil
}

var errDown = errors.New("unavailable")

func fakeSource() Source {
	return Source{
		Uptime: func(context.Context) (uint64, error) { return 90061, nil },
		Load: func(context.Context) (*load.AvgStat, error) {
			return &load.AvgStat{Load1: 1, Load5: 0.5, Load15: 0.25}, nil
		},
		Memory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{UsedPercent: 41.6}, nil
		},
		Partitions: func(context.Context, bool) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Mountpoint: "/", Fstype: "ext4"},
				{Mountpoint: "/boot/efi", Fstype: "vfat"},
				{Mountpoint: "/run", Fstype: "tmpfs"},
				{Mountpoint: "/snap/core/1", Fstype: "squashfs"},
				{Mountpoint: "/data", Fstype: "zfs"},
				{Mountpoint: "/data", Fstype: "zfs"},
			}, nil
		},
		Usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if path == "/" {
				return &disk.UsageStat{UsedPercent: 41.2}, nil
			}
			return &disk.UsageStat{UsedPercent: 12}, nil
		},
		NetIO: func(context.Context, bool) ([]psnet.IOCountersStat, error) {
			return []psnet.IOCountersStat{
				{Name: "lo", BytesRecv: 1, BytesSent: 1},
				{Name: "eth0", BytesRecv: 1 << 30, BytesSent: 3 << 29},
			}, nil
		},
		Connections: func(context.Context, string) ([]psnet.ConnectionStat, error) {
			return make([]psnet.ConnectionStat, 7), nil
		},
		Users: func(context.Context) ([]host.UserStat, error) {
			return []host.UserStat{{User: "bob"}, {User: "alice"}, {User: "bob"}}, nil
		},
	}
}

func TestCollector_Collect(t *testing.T) {
	cmd := fakeCmd{
		"last --time-format iso reboot":      "reboot   system boot  6.1.0   2026-10-03T12:00:00+00:00   still running",
		"zpool status":                       " state: ONLINE\nerrors: No known data errors",
		"lsblk -d -n -o NAME,TYPE":           "sda disk\nsr0 rom",
		"smartctl -H /dev/sda":               "SMART overall-health self-assessment test result: PASSED",
		"ip route show default":              "default via 10.0.0.1 dev eth0 proto static",
		"systemctl is-active plex-updates":   "active",
		"systemctl is-active watchdog.timer": "inactive",
	}
	c := NewCollector(CollectorConfig{
		PublicIPURL: "https://ip.example/ip",
		SSHPort:     "22",
		Services:    []string{"plex-updates", "watchdog.timer"},
	}, fakeSource(), cmd)

	httpmock.ActivateNonDefault(c.HTTPClient())
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, "https://ip.example/ip", httpmock.NewStringResponder(200, "203.0.113.7\n"))

	f := c.Collect(context.Background(), time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "1 day, 1 hour, 1 minute", f.Uptime)
	assert.Equal(t, "1", f.Reboots)
	assert.Equal(t, "203.0.113.7", f.PublicIP)
	assert.Equal(t, "1.00/0.50/0.25", f.Load)
	assert.Equal(t, "42%", f.RAM)
	assert.Equal(t, "7", f.Conns)
	assert.Equal(t, "/ 41%  /data 12%", f.Disk)
	assert.Equal(t, "ONLINE, No known data errors", f.ZFS)
	assert.Equal(t, "sda:PASSED", f.SMART)
	assert.Equal(t, "eth0: RX 1.00GB TX 1.50GB", f.Net)
	assert.Equal(t, "3 (alice bob)", f.Users)
	assert.Equal(t, []ServiceStatus{{Name: "plex-updates", Active: true}, {Name: "watchdog.timer"}}, f.Services)
}

func TestCollector_FailuresBecomeNA(t *testing.T) {
	src := Source{
		Uptime:      func(context.Context) (uint64, error) { return 0, errDown },
		Load:        func(context.Context) (*load.AvgStat, error) { return nil, errDown },
		Memory:      func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errDown },
		Partitions:  func(context.Context, bool) ([]disk.PartitionStat, error) { return nil, errDown },
		Usage:       func(context.Context, string) (*disk.UsageStat, error) { return nil, errDown },
		NetIO:       func(context.Context, bool) ([]psnet.IOCountersStat, error) { return nil, errDown },
		Connections: func(context.Context, string) ([]psnet.ConnectionStat, error) { return nil, errDown },
		Users:       func(context.Context) ([]host.UserStat, error) { return nil, errDown },
	}
	c := NewCollector(CollectorConfig{PublicIPURL: "https://ip.example/ip"}, src, fakeCmd{})

	httpmock.ActivateNonDefault(c.HTTPClient())
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, "https://ip.example/ip", httpmock.NewStringResponder(502, "bad gateway"))

	f := c.Collect(context.Background(), time.Now())
	for name, v := range map[string]string{
		"uptime": f.Uptime, "reboots": f.Reboots, "ip": f.PublicIP, "load": f.Load, "ram": f.RAM,
		"conns": f.Conns, "disk": f.Disk, "zfs": f.ZFS, "smart": f.SMART, "net": f.Net, "users": f.Users,
	} {
		assert.Equal(t, NA, v, name)
	}
	assert.Empty(t, f.Services)
}
