package renderer

import (
	"time"

	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"

	"github.com/vkngwrapper/triangle/internal/frame"
)

const statsInterval = 5 * time.Second

// pacer measures how long Draw takes and periodically reports it together
// with the frame engine counters.
type pacer struct {
	logger log.FieldLogger
	now    func() time.Duration

	started    time.Duration
	lastReport time.Duration
	total      time.Duration
	worst      time.Duration
	frames     uint64

	// window counters reset on every periodic report
	windowTime   time.Duration
	windowFrames uint64
}

func newPacer(logger log.FieldLogger) *pacer {
	return newPacerWithClock(logger, hrtime.Now)
}

func newPacerWithClock(logger log.FieldLogger, now func() time.Duration) *pacer {
	start := now()
	return &pacer{
		logger:     logger,
		now:        now,
		started:    start,
		lastReport: start,
	}
}

func (p *pacer) begin() time.Duration {
	return p.now()
}

func (p *pacer) end(start time.Duration, stats frame.Stats) {
	now := p.now()
	elapsed := now - start

	p.frames++
	p.total += elapsed
	p.windowFrames++
	p.windowTime += elapsed
	if elapsed > p.worst {
		p.worst = elapsed
	}

	if now-p.lastReport < statsInterval {
		return
	}

	p.logger.WithFields(p.fields(stats)).WithFields(log.Fields{
		"avgFrameTime": average(p.windowTime, p.windowFrames),
		"fps":          rate(p.windowFrames, now-p.lastReport),
	}).Debug("Frame pacing")

	p.lastReport = now
	p.windowTime = 0
	p.windowFrames = 0
}

func (p *pacer) summary(stats frame.Stats) {
	p.logger.WithFields(p.fields(stats)).WithFields(log.Fields{
		"avgFrameTime": average(p.total, p.frames),
		"worstFrame":   p.worst,
		"fps":          rate(p.frames, p.now()-p.started),
	}).Info("Frame loop finished")
}

func (p *pacer) fields(stats frame.Stats) log.Fields {
	return log.Fields{
		"frames":        stats.Frames,
		"skipped":       stats.SkippedFrames,
		"stalePresents": stats.StalePresents,
		"imageWaits":    stats.ImageWaits,
	}
}

func average(total time.Duration, n uint64) time.Duration {
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func rate(n uint64, over time.Duration) float64 {
	if over <= 0 {
		return 0
	}
	return float64(n) / over.Seconds()
}
