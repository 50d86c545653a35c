package bound

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"
)

// CpuLimiter sheds load when host CPU stays above the threshold, so a
// trending-video stampede degrades to 503s instead of timeouts.
type CpuLimiter struct {
	threshold  float64
	overloaded atomic.Bool
}

func NewCpuLimiter(threshold float64) *CpuLimiter {
	if threshold <= 0 || threshold > 100 {
		threshold = 90
	}
	l := &CpuLimiter{threshold: threshold}
	go l.sample()
	return l
}

func (l *CpuLimiter) sample() {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		percents, err := cpu.Percent(0, false)
		if err != nil || len(percents) == 0 {
			continue
		}
		over := percents[0] > l.threshold
		if over != l.overloaded.Load() {
			logrus.Warnf("cpu limiter state change: overloaded=%v usage=%.1f%%", over, percents[0])
		}
		l.overloaded.Store(over)
	}
}

// MiddlewareFunc rejects requests while the host is overloaded.
func (l *CpuLimiter) MiddlewareFunc() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if l.overloaded.Load() {
			c.AbortWithStatusJSON(consts.StatusServiceUnavailable, map[string]interface{}{
				"code":    10007,
				"message": "server overloaded, retry later",
			})
			return
		}
		c.Next(ctx)
	}
}
