// Package process provides a read-only process listing for the status API.
// The agent never kills processes directly; that goes through bot-issued
// shell commands like everything else.
package process

import (
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Info describes one running process.
type Info struct {
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	Status     string    `json:"status"`
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float32   `json:"mem_percent"`
	MemRSS     uint64    `json:"mem_rss"`
	Cmdline    string    `json:"cmdline"`
	CreateTime time.Time `json:"create_time"`
}

// List contains running processes sorted by CPU usage.
type List struct {
	Processes []Info `json:"processes"`
	Total     int    `json:"total"`
}

// Top returns the n busiest processes by CPU usage. Total reflects every
// process on the host, not just the returned slice.
func Top(n int) (*List, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to get processes: %w", err)
	}

	var processes []Info
	for _, p := range procs {
		info, err := describe(p)
		if err != nil {
			continue
		}
		processes = append(processes, *info)
	}

	sort.Slice(processes, func(i, j int) bool {
		return processes[i].CPUPercent > processes[j].CPUPercent
	})

	total := len(processes)
	if n < total {
		processes = processes[:n]
	}

	return &List{
		Processes: processes,
		Total:     total,
	}, nil
}

func describe(p *process.Process) (*Info, error) {
	name, err := p.Name()
	if err != nil {
		return nil, err
	}

	username, _ := p.Username()
	status, _ := p.Status()
	cpuPercent, _ := p.CPUPercent()
	memPercent, _ := p.MemoryPercent()
	memInfo, _ := p.MemoryInfo()
	cmdline, _ := p.Cmdline()
	createTime, _ := p.CreateTime()

	var memRSS uint64
	if memInfo != nil {
		memRSS = memInfo.RSS
	}

	var statusStr string
	if len(status) > 0 {
		statusStr = status[0]
	}

	return &Info{
		PID:        p.Pid,
		Name:       name,
		Username:   username,
		Status:     statusStr,
		CPUPercent: cpuPercent,
		MemPercent: memPercent,
		MemRSS:     memRSS,
		Cmdline:    cmdline,
		CreateTime: time.UnixMilli(createTime),
	}, nil
}
