package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu         *sync.Mutex
	elapsed    time.Duration
	total      int64
	timed      int64
	lastStatus string
}

func (mt *DefaultMetric) AddRun(status string, duration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.total++
	mt.lastStatus = status

	if duration > 0 {
		mt.timed++
		mt.elapsed += duration
	}
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.timed == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.timed)))
}

func (mt *DefaultMetric) Runs() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) LastStatus() string {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.lastStatus
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
