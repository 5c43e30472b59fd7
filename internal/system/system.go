// Package system collects host health information for the status API.
package system

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Host identifies the machine the agent runs commands on.
type Host struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	Uptime          uint64 `json:"uptime"`
	UptimeHuman     string `json:"uptime_human"`
}

// CPU holds aggregate CPU usage and load averages.
type CPU struct {
	Cores      int     `json:"cores"`
	ModelName  string  `json:"model_name"`
	UsageTotal float64 `json:"usage_total"`
	LoadAvg1   float64 `json:"load_avg_1"`
	LoadAvg5   float64 `json:"load_avg_5"`
	LoadAvg15  float64 `json:"load_avg_15"`
}

// Memory holds virtual memory and swap usage.
type Memory struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// Partition is one mounted filesystem.
type Partition struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// Snapshot combines everything the /api/metrics endpoint reports.
type Snapshot struct {
	Timestamp time.Time   `json:"timestamp"`
	Host      Host        `json:"host"`
	CPU       CPU         `json:"cpu"`
	Memory    Memory      `json:"memory"`
	Disk      []Partition `json:"disk"`
}

// Collector gathers metrics through gopsutil.
type Collector struct{}

// NewCollector creates a metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// HostInfo retrieves host identification and uptime.
func (c *Collector) HostInfo() (*Host, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	return &Host{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Arch:            info.KernelArch,
		Uptime:          info.Uptime,
		UptimeHuman:     formatUptime(info.Uptime),
	}, nil
}

// CPUInfo retrieves aggregate CPU usage and load averages.
func (c *Collector) CPUInfo() (*CPU, error) {
	cpuInfo, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu info: %w", err)
	}

	percent, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu percent: %w", err)
	}

	loadAvg, err := load.Avg()
	if err != nil {
		// Not available on all platforms
		loadAvg = &load.AvgStat{}
	}

	out := &CPU{
		Cores:     len(cpuInfo),
		LoadAvg1:  loadAvg.Load1,
		LoadAvg5:  loadAvg.Load5,
		LoadAvg15: loadAvg.Load15,
	}
	if len(cpuInfo) > 0 {
		out.ModelName = cpuInfo[0].ModelName
	}
	if len(percent) > 0 {
		out.UsageTotal = percent[0]
	}
	return out, nil
}

// MemoryInfo retrieves memory and swap usage.
func (c *Collector) MemoryInfo() (*Memory, error) {
	vmem, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	swap, err := mem.SwapMemory()
	if err != nil {
		swap = &mem.SwapMemoryStat{}
	}

	return &Memory{
		Total:       vmem.Total,
		Available:   vmem.Available,
		Used:        vmem.Used,
		UsedPercent: vmem.UsedPercent,
		SwapTotal:   swap.Total,
		SwapUsed:    swap.Used,
	}, nil
}

// DiskInfo retrieves usage for real (non-pseudo) filesystems.
func (c *Collector) DiskInfo() ([]Partition, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk partitions: %w", err)
	}

	var out []Partition
	for _, p := range partitions {
		if p.Fstype == "squashfs" || p.Fstype == "tmpfs" || p.Fstype == "devtmpfs" {
			continue
		}

		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}

		out = append(out, Partition{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			UsedPercent: usage.UsedPercent,
		})
	}

	return out, nil
}

// All gathers a full snapshot.
func (c *Collector) All() (*Snapshot, error) {
	hostInfo, err := c.HostInfo()
	if err != nil {
		return nil, err
	}

	cpuInfo, err := c.CPUInfo()
	if err != nil {
		return nil, err
	}

	memInfo, err := c.MemoryInfo()
	if err != nil {
		return nil, err
	}

	diskInfo, err := c.DiskInfo()
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Timestamp: time.Now(),
		Host:      *hostInfo,
		CPU:       *cpuInfo,
		Memory:    *memInfo,
		Disk:      diskInfo,
	}, nil
}

func formatUptime(seconds uint64) string {
	duration := time.Duration(seconds) * time.Second

	days := int(duration.Hours() / 24)
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
