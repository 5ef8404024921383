package report

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const NA = "N/A"

// Source is the set of host probes the collector reads from.
type Source struct {
	Uptime      func(ctx context.Context) (uint64, error)
	Load        func(ctx context.Context) (*load.AvgStat, error)
	Memory      func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions  func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	Usage       func(ctx context.Context, path string) (*disk.UsageStat, error)
	NetIO       func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
	Connections func(ctx context.Context, kind string) ([]psnet.ConnectionStat, error)
	Users       func(ctx context.Context) ([]host.UserStat, error)
}

func HostSource() Source {
	return Source{
		Uptime:      host.UptimeWithContext,
		Load:        load.AvgWithContext,
		Memory:      mem.VirtualMemoryWithContext,
		Partitions:  disk.PartitionsWithContext,
		Usage:       disk.UsageWithContext,
		NetIO:       psnet.IOCountersWithContext,
		Connections: psnet.ConnectionsWithContext,
		Users:       host.UsersWithContext,
	}
}

type CollectorConfig struct {
	PublicIPURL string
	SSHPort     string
	Services    []string
	MaxDrives   int
	Timeout     time.Duration
	UserAgent   string
}

type Collector struct {
	cfg  CollectorConfig
	src  Source
	cmd  CommandRunner
	http *http.Client
	log  *zap.Logger
}

func NewCollector(cfg CollectorConfig, src Source, cmd CommandRunner) *Collector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxDrives <= 0 {
		cfg.MaxDrives = 4
	}
	d := &net.Dialer{Timeout: cfg.Timeout}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp4", addr)
		},
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Collector{
		cfg:  cfg,
		src:  src,
		cmd:  cmd,
		http: &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(transport)},
		log:  zap.L().With(zap.String("component", "report.collector")),
	}
}

func (c *Collector) WithLogger(l *zap.Logger) *Collector {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(zap.String("component", "report.collector"))
	return &cp
}

func (c *Collector) HTTPClient() *http.Client { return c.http }

// Collect never fails; facts that cannot be read are reported as N/A.
func (c *Collector) Collect(ctx context.Context, now time.Time) Facts {
	return Facts{
		Uptime:   c.uptime(ctx),
		Reboots:  c.reboots(ctx, now),
		PublicIP: c.publicIP(ctx),
		SSHPort:  c.cfg.SSHPort,
		Load:     c.load(ctx),
		RAM:      c.ram(ctx),
		Conns:    c.conns(ctx),
		Disk:     c.disks(ctx),
		ZFS:      c.zfs(ctx),
		SMART:    c.smart(ctx),
		Net:      c.network(ctx),
		Users:    c.users(ctx),
		Services: c.services(ctx),
	}
}

func (c *Collector) na(fact string, err error) string {
	c.log.Debug("fact unavailable", zap.String("fact", fact), zap.Error(err))
	return NA
}

func (c *Collector) uptime(ctx context.Context) string {
	secs, err := c.src.Uptime(ctx)
	if err != nil {
		return c.na("uptime", err)
	}
	return FormatUptime(time.Duration(secs) * time.Second)
}

func (c *Collector) reboots(ctx context.Context, now time.Time) string {
	out, err := c.cmd.Run(ctx, "last", "--time-format", "iso", "reboot")
	if err != nil && out == "" {
		return c.na("reboots", err)
	}
	return fmt.Sprint(CountReboots(out, now))
}

func (c *Collector) publicIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.PublicIPURL, nil)
	if err != nil {
		return c.na("public_ip", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.na("public_ip", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return c.na("public_ip", fmt.Errorf("status %d", resp.StatusCode))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return c.na("public_ip", err)
	}
	ip := strings.TrimSpace(string(b))
	if net.ParseIP(ip) == nil {
		return c.na("public_ip", fmt.Errorf("not an address: %q", ip))
	}
	return ip
}

func (c *Collector) load(ctx context.Context) string {
	avg, err := c.src.Load(ctx)
	if err != nil {
		return c.na("load", err)
	}
	return fmt.Sprintf("%.2f/%.2f/%.2f", avg.Load1, avg.Load5, avg.Load15)
}

func (c *Collector) ram(ctx context.Context) string {
	vm, err := c.src.Memory(ctx)
	if err != nil {
		return c.na("ram", err)
	}
	return fmt.Sprintf("%.0f%%", vm.UsedPercent)
}

func (c *Collector) conns(ctx context.Context) string {
	cs, err := c.src.Connections(ctx, "inet")
	if err != nil {
		return c.na("connections", err)
	}
	return fmt.Sprint(len(cs))
}

var skipFS = map[string]bool{"tmpfs": true, "devtmpfs": true, "squashfs": true}

func (c *Collector) disks(ctx context.Context) string {
	parts, err := c.src.Partitions(ctx, false)
	if err != nil {
		return c.na("disk", err)
	}
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		mp := p.Mountpoint
		if skipFS[p.Fstype] || strings.HasPrefix(mp, "/snap") || strings.HasPrefix(mp, "/boot") || seen[mp] {
			continue
		}
		seen[mp] = true
		u, err := c.src.Usage(ctx, mp)
		if err != nil {
			c.log.Debug("disk usage", zap.String("mountpoint", mp), zap.Error(err))
			continue
		}
		out = append(out, fmt.Sprintf("%s %.0f%%", mp, u.UsedPercent))
	}
	if len(out) == 0 {
		return NA
	}
	return strings.Join(out, "  ")
}

func (c *Collector) zfs(ctx context.Context) string {
	out, err := c.cmd.Run(ctx, "zpool", "status")
	if out == "" {
		return c.na("zfs", err)
	}
	return ParseZpoolStatus(out)
}

func (c *Collector) smart(ctx context.Context) string {
	out, err := c.cmd.Run(ctx, "lsblk", "-d", "-n", "-o", "NAME,TYPE")
	if out == "" {
		return c.na("smart", err)
	}
	drives := DiskNames(out, c.cfg.MaxDrives)
	if len(drives) == 0 {
		return NA
	}
	res := make([]string, 0, len(drives))
	for _, d := range drives {
		// smartctl encodes findings in its exit status, so the output is read regardless.
		h, _ := c.cmd.Run(ctx, "smartctl", "-H", "/dev/"+d)
		res = append(res, d+":"+SmartHealth(h))
	}
	return strings.Join(res, " ")
}

func (c *Collector) network(ctx context.Context) string {
	out, err := c.cmd.Run(ctx, "ip", "route", "show", "default")
	iface := DefaultInterface(out)
	if iface == "" {
		return c.na("net", err)
	}
	counters, err := c.src.NetIO(ctx, true)
	if err != nil {
		return c.na("net", err)
	}
	for _, n := range counters {
		if n.Name == iface {
			return fmt.Sprintf("%s: RX %s TX %s", iface, gigabytes(n.BytesRecv), gigabytes(n.BytesSent))
		}
	}
	return c.na("net", fmt.Errorf("no counters for %s", iface))
}

func (c *Collector) users(ctx context.Context) string {
	us, err := c.src.Users(ctx)
	if err != nil {
		return c.na("users", err)
	}
	if len(us) == 0 {
		return "0"
	}
	uniq := map[string]struct{}{}
	for _, u := range us {
		uniq[u.User] = struct{}{}
	}
	names := make([]string, 0, len(uniq))
	for n := range uniq {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Sprintf("%d (%s)", len(us), strings.Join(names, " "))
}

func (c *Collector) services(ctx context.Context) []ServiceStatus {
	out := make([]ServiceStatus, 0, len(c.cfg.Services))
	for _, name := range c.cfg.Services {
		state, _ := c.cmd.Run(ctx, "systemctl", "is-active", name)
		out = append(out, ServiceStatus{Name: name, Active: state == "active"})
	}
	return out
}
