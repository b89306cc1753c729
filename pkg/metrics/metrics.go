package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the time series store under workdir/data/metrics.
// An empty workdir keeps points in memory only.
func InitMetrics(workdir string) error {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		_ = storage.Close()
	}
	storage = s
	return nil
}

// SetGauge records the current value of a gauge
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// Latest returns the most recent value of name recorded within window
func Latest(name string, window time.Duration) (float64, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return 0, false
	}
	end := time.Now().Unix() + 1
	points, err := storage.Select(name, nil, end-int64(window.Seconds())-1, end)
	if err != nil || len(points) == 0 {
		return 0, false
	}
	last := points[0]
	for _, p := range points[1:] {
		if p.Timestamp >= last.Timestamp {
			last = p
		}
	}
	return last.Value, true
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
