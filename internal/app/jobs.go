package app

import (
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/pkg/metrics"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ErrUnknownJob is returned by RunJobNow for names not in the job table
var ErrUnknownJob = errors.New("unknown job")

// Job is one periodic maintenance task
type Job struct {
	Name string
	Spec string
	Run  func()
}

// JobInfo describes a scheduled job for the admin dashboard
type JobInfo struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev"`
}

func (a *Application) jobTable() []Job {
	return []Job{
		{Name: "system_monitor", Spec: "@every 30s", Run: a.SchedSystemMonitorTask},
		{Name: "process_monitor", Spec: "@every 30s", Run: a.SchedProcessMonitorTask},
		{Name: "catalog_monitor", Spec: "@every 5m", Run: a.SchedCatalogMonitorTask},
		{Name: "clear_expired_sessions", Spec: "@hourly", Run: a.SchedClearExpiredSessions},
		{Name: "clear_read_messages", Spec: "@daily", Run: a.SchedClearReadMessages},
	}
}

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))
	a.jobIDs = make(map[string]cron.EntryID)

	for _, job := range a.jobTable() {
		run := job.Run
		id, err := a.sched.AddFunc(job.Spec, func() {
			go run()
		})
		if err != nil {
			zap.S().Errorf("init job %s error %s", job.Name, err.Error())
			continue
		}
		a.jobIDs[job.Name] = id
	}

	a.sched.Start()
}

// Jobs lists the maintenance jobs with their next and previous run times
func (a *Application) Jobs() []JobInfo {
	table := a.jobTable()
	out := make([]JobInfo, 0, len(table))
	for _, job := range table {
		info := JobInfo{Name: job.Name, Spec: job.Spec}
		if id, ok := a.jobIDs[job.Name]; ok && a.sched != nil {
			entry := a.sched.Entry(id)
			info.Next = entry.Next
			info.Prev = entry.Prev
		}
		out = append(out, info)
	}
	return out
}

// RunJobNow runs the named job synchronously, outside its schedule
func (a *Application) RunJobNow(name string) error {
	for _, job := range a.jobTable() {
		if job.Name == name {
			zap.S().Infof("run job %s on demand", name)
			job.Run()
			return nil
		}
	}
	return ErrUnknownJob
}

// SchedSystemMonitorTask records host cpu and memory gauges
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// percent * 100
	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(cpuuse[0]*100))
	}
	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask records the server process cpu and memory gauges
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		zap.L().Warn("inspect server process", zap.Error(err))
		return
	}
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("stylehub_cpuuse", int64(cpuuse*100))
	}
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("stylehub_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedCatalogMonitorTask records catalog gauges
func (a *Application) SchedCatalogMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	var products, messages int64
	if err := a.gormDB.Model(&domain.Product{}).Where("status = ?", domain.ProductStatusActive).Count(&products).Error; err == nil {
		metrics.SetGauge("catalog_active_products", products)
	}
	if err := a.gormDB.Model(&domain.ContactMessage{}).Where("status = ?", domain.MessageStatusNew).Count(&messages).Error; err == nil {
		metrics.SetGauge("contact_new_messages", messages)
	}
}

// SchedClearExpiredSessions removes sessions past their expiry
func (a *Application) SchedClearExpiredSessions() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	res := a.gormDB.Where("expires_at <= ?", time.Now()).Delete(&domain.SysSession{})
	if res.Error != nil {
		zap.L().Error("clear expired sessions", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("cleared expired sessions", zap.Int64("count", res.RowsAffected))
	}
}

// SchedClearReadMessages drops read contact messages older than a year
func (a *Application) SchedClearReadMessages() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	res := a.gormDB.
		Where("status = ? AND created_at < ?", domain.MessageStatusRead, time.Now().Add(-time.Hour*24*365)).
		Delete(&domain.ContactMessage{})
	if res.Error != nil {
		zap.L().Error("clear read messages", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("cleared read messages", zap.Int64("count", res.RowsAffected))
	}
}
