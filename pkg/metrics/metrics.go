package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

// Counter names recorded by the catalog and auth services.
const (
	ProductCreate     = "product_create"
	ProductDelete     = "product_delete"
	AdminLoginSuccess = "admin_login_success"
	AdminLoginFailure = "admin_login_failure"
	AdminRegister     = "admin_register"
)

// Counters lists every counter reported by Summary.
var Counters = []string{
	ProductCreate,
	ProductDelete,
	AdminLoginSuccess,
	AdminLoginFailure,
	AdminRegister,
}

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the metrics store under <dataDir>/metrics.
// An empty dataDir keeps every point in memory.
func InitMetrics(dataDir string) error {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Milliseconds),
		tstorage.WithPartitionDuration(time.Hour),
		tstorage.WithRetention(30 * 24 * time.Hour),
	}
	if dataDir != "" {
		dataPath := filepath.Join(dataDir, "metrics")
		if err := os.MkdirAll(dataPath, 0o755); err != nil {
			return errors.Wrap(err, "create metrics dir")
		}
		opts = append(opts, tstorage.WithDataPath(dataPath))
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

// Close flushes and closes the metrics store.
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

// Incr records one occurrence of the named counter. It is a no-op before InitMetrics.
func Incr(name string) {
	Add(name, 1)
}

// Add records value for the named counter at the current time.
func Add(name string, value float64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric: name,
		DataPoint: tstorage.DataPoint{
			Timestamp: time.Now().UnixMilli(),
			Value:     value,
		},
	}})
}

// Sum adds up the points of a counter in [start, end).
func Sum(name string, start, end time.Time) (float64, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return 0, nil
	}
	points, err := storage.Select(name, nil, start.UnixMilli(), end.UnixMilli())
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "select metric %s", name)
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total, nil
}

// Summary sums every known counter over the last window.
func Summary(window time.Duration) (map[string]float64, error) {
	end := time.Now().Add(time.Millisecond)
	start := end.Add(-window)
	result := make(map[string]float64, len(Counters))
	for _, name := range Counters {
		v, err := Sum(name, start, end)
		if err != nil {
			return nil, err
		}
		result[name] = v
	}
	return result, nil
}
