package engine

import (
	"context"
	"log"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trackforce/ffbcore/encoder"
	"github.com/trackforce/ffbcore/frame"
	"github.com/trackforce/ffbcore/mailbox"
	"github.com/trackforce/ffbcore/pipeline"
	"github.com/trackforce/ffbcore/safety"
	"github.com/trackforce/ffbcore/scheduler"
	"github.com/trackforce/ffbcore/trace"

	"github.com/prometheus/client_golang/prometheus"
)

// ioPollInterval bounds how often the I/O writer goroutine retries an
// empty staging queue. It is not RT-critical: a stale torque command
// sitting in the queue for up to this long only matters to a human
// operator, never to the RT loop itself.
const ioPollInterval = time.Millisecond

// torqueSaturationLogThreshold is the "N consecutive ticks" spec.md
// §7's TorqueLimit row leaves as a judgment call (its Recovery column
// is "Log only; no state change" — deliberately not wired into the
// interlock). Chosen generously so ordinary curve/cap interaction
// doesn't spam the log, matching the hands-off detector's own
// consecutive-tick framing (spec.md line 137) but an order of
// magnitude more tolerant since torque saturation alone is not unsafe.
const torqueSaturationLogThreshold = 200

// usbWriteFailureThreshold is the "small consecutive-failure
// threshold" spec.md §7 requires before a write failure escalates
// into the fault channel, grounded on driver/tmc2209's
// retry-with-verify idiom (a handful of retries before giving up).
const usbWriteFailureThreshold = 5

// Engine owns the running RT loop and the non-RT goroutines that
// surround it: the I/O writer draining encoder.StagingQueue and a
// metrics sampler. It is the concrete thing cmd/ffbenchd (and any
// other host) constructs and runs, generalizing
// cmd/controller/main.go's single-goroutine "Init, then loop forever"
// shape into the three-goroutine topology spec.md §5 requires.
type Engine struct {
	cfg Config
	log *log.Logger

	sched   *scheduler.AbsoluteScheduler
	handle  *pipeline.Handle
	mailbox *mailbox.Mailbox
	fsm     *safety.FSM
	queue   encoder.StagingQueue

	provider  trace.Provider
	alertSink *channelAlertSink
	metrics   *metricsCollector

	lastTicks  uint64
	lastMissed uint64

	// lastTorqueNmBits is the most recent post-clamp commanded
	// torque, as math.Float32bits, so the I/O writer goroutine can
	// read it (via lastTorqueNm) without racing the RT loop that
	// writes it every tick.
	lastTorqueNmBits atomic.Uint32

	pipelineFaultActive    bool
	timingFaultActive      bool
	consecutiveSaturations int
}

// New constructs an Engine. reg may be nil, in which case metrics are
// computed but never exported to a Prometheus registry.
func New(cfg Config, reg prometheus.Registerer) *Engine {
	sink := newChannelAlertSink(64)
	return &Engine{
		cfg:       cfg,
		log:       cfg.logger(),
		sched:     scheduler.NewAbsoluteScheduler(cfg.Scheduler),
		handle:    pipeline.NewHandle(cfg.InitialPipeline),
		mailbox:   mailbox.NewMailbox(),
		fsm:       safety.NewFSM(cfg.Safety, sink),
		provider:  cfg.provider(),
		alertSink: sink,
		metrics:   newMetricsCollector(reg),
	}
}

// Mailbox is the publish side of the input snapshot channel; the
// host's input producer calls Publish on it once per update.
func (e *Engine) Mailbox() *mailbox.Mailbox { return e.mailbox }

// Safety exposes the interlock FSM so the host's control surface
// (a UI button, a CLI command) can drive RequestHighTorque,
// ProvideUIConsent and the rest of the arming sequence.
func (e *Engine) Safety() *safety.FSM { return e.fsm }

// SwapPipeline installs a newly compiled pipeline, taking effect at
// the next tick boundary. A pending PipelineFault is cleared on
// acceptance (spec.md §7: "cleared by operator ack after pipeline
// swap" — installing a new pipeline is that ack).
func (e *Engine) SwapPipeline(p *pipeline.Pipeline) {
	e.handle.Publish(p)
	e.fsm.ClearFault(safety.PipelineFault)
	e.pipelineFaultActive = false
	e.log.Printf("engine: pipeline swap accepted")
	e.provider.EmitAppEvent(trace.AppEvent{Category: trace.ConfigChanged})
}

// Events returns the channel safety-interlock notifications are
// delivered on.
func (e *Engine) Events() <-chan Event { return e.alertSink.ch }

func (e *Engine) setLastTorqueNm(v float32) {
	e.lastTorqueNmBits.Store(math.Float32bits(v))
}

func (e *Engine) lastTorqueNm() float32 {
	return math.Float32frombits(e.lastTorqueNmBits.Load())
}

// Run starts the RT loop, the I/O writer and the metrics sampler, and
// blocks until ctx is canceled or one of them returns an error.
func (e *Engine) Run(ctx context.Context) error {
	scheduler.RTSetup()
	if err := e.provider.Initialize(); err != nil {
		return err
	}
	defer e.provider.Shutdown()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.runRTLoop(ctx) })
	g.Go(func() error { return e.runIOWriter(ctx) })
	g.Go(func() error { return e.runMetricsSampler(ctx) })
	return g.Wait()
}

func (e *Engine) runRTLoop(ctx context.Context) error {
	buf := make([]byte, e.cfg.Encoder.PayloadLen())
	var seq uint16

	for {
		select {
		case <-ctx.Done():
			e.shutdownRTLoop(buf, seq)
			return nil
		default:
		}

		tick := e.sched.WaitForTick()
		now := e.sched.NowNs()
		e.provider.EmitRTEvent(trace.RTEvent{Category: trace.TickStart, TickCount: tick, TimestampNs: now})

		snap := e.mailbox.Latest()
		var f frame.Frame
		f.FFBIn = snap.FFBIn
		f.WheelSpeed = snap.WheelSpeedHint
		f.TimestampNs = now
		f.Seq = seq
		seq++

		p := e.handle.Load()
		ferr := p.Process(&f)
		pipelineFaulted := ferr != frame.ErrNone
		if pipelineFaulted {
			e.provider.EmitRTEvent(trace.RTEvent{Category: trace.PipelineFault, TickCount: tick, TimestampNs: now})
			f.TorqueOut = 0
		}
		e.updateLatchedFault(&e.pipelineFaultActive, pipelineFaulted, safety.PipelineFault, now)

		e.fsm.Tick(f.HandsOff, now)

		requestedNm := f.TorqueOut * e.cfg.MaxRatedTorqueNm
		stateBeforeClamp := e.fsm.State().Kind
		torqueNm := e.fsm.ClampTorqueNm(requestedNm, now)
		e.recordSaturation(stateBeforeClamp, requestedNm, torqueNm)
		e.setLastTorqueNm(torqueNm)

		q := encoder.NewTorqueQ8_8(torqueNm)
		n := e.cfg.Encoder.Encode(q, seq, 0, buf)
		var rep encoder.Report
		rep.Len = copy(rep.Data[:], buf[:n])
		if dropped := e.queue.Push(rep); dropped {
			e.metrics.outputReportsLost.Inc()
		}
		e.provider.EmitRTEvent(trace.RTEvent{Category: trace.HIDWrite, TickCount: tick, TimestampNs: now, Value: int64(n)})

		timingViolated := e.sched.CheckTimingViolation() != nil
		if timingViolated {
			e.provider.EmitRTEvent(trace.RTEvent{Category: trace.DeadlineMiss, TickCount: tick, TimestampNs: now})
		}
		e.updateLatchedFault(&e.timingFaultActive, timingViolated, safety.TimingViolation, now)

		e.provider.EmitRTEvent(trace.RTEvent{Category: trace.TickEnd, TickCount: tick, TimestampNs: e.sched.NowNs()})
	}
}

// updateLatchedFault drives kind into or out of the safety interlock
// on the rising/falling edge of condition, rather than every tick
// condition holds true — DetectFault's severity/transition callbacks
// are meant to fire once per fault episode (spec.md §6's
// FaultDetected/FaultCleared are discrete state-machine events, not a
// per-tick status poll).
func (e *Engine) updateLatchedFault(active *bool, condition bool, kind safety.FaultType, nowNs int64) {
	switch {
	case condition && !*active:
		e.fsm.DetectFault(kind, nowNs, e.lastTorqueNm())
		*active = true
	case !condition && *active:
		e.fsm.ClearFault(kind)
		*active = false
	}
}

// recordSaturation tracks consecutive ticks the safety clamp reduced
// the requested torque while armed for normal operation (as opposed
// to a fault-driven soft-stop ramp or a Faulted zero, which aren't
// "saturation" in spec.md §7's TorqueLimit sense). Log only; per the
// error table's Recovery column this never touches interlock state.
func (e *Engine) recordSaturation(stateBeforeClamp safety.StateKind, requestedNm, clampedNm float32) {
	saturated := stateBeforeClamp != safety.Faulted && stateBeforeClamp != safety.SoftStopping && clampedNm != requestedNm
	if !saturated {
		e.consecutiveSaturations = 0
		e.metrics.torqueSaturationCount.Set(0)
		return
	}
	e.consecutiveSaturations++
	e.metrics.torqueSaturationTotal.Inc()
	e.metrics.torqueSaturationCount.Set(float64(e.consecutiveSaturations))
	if e.consecutiveSaturations == torqueSaturationLogThreshold {
		e.log.Printf("engine: safety clamp has saturated torque for %d consecutive ticks: %v",
			e.consecutiveSaturations, frame.ErrTorqueLimit)
	}
}

// shutdownRTLoop implements spec.md §5's graceful stop: issue a final
// zero-torque encoded report and return the interlock to SafeTorque
// before the RT loop exits.
func (e *Engine) shutdownRTLoop(buf []byte, seq uint16) {
	e.fsm.Shutdown()
	now := e.sched.NowNs()

	q := encoder.NewTorqueQ8_8(0)
	n := e.cfg.Encoder.Encode(q, seq, 0, buf)
	var rep encoder.Report
	rep.Len = copy(rep.Data[:], buf[:n])
	if dropped := e.queue.Push(rep); dropped {
		e.metrics.outputReportsLost.Inc()
	}
	e.setLastTorqueNm(0)
	e.provider.EmitRTEvent(trace.RTEvent{Category: trace.HIDWrite, TimestampNs: now, Value: int64(n)})
	e.log.Printf("engine: graceful shutdown, final zero-torque report staged")
}

func (e *Engine) runIOWriter(ctx context.Context) error {
	var consecutiveFailures int
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		rep, ok := e.queue.Pop()
		if !ok {
			time.Sleep(ioPollInterval)
			continue
		}
		if _, err := e.cfg.Writer.WriteOutputReport(rep.Data[:rep.Len]); err != nil {
			e.metrics.usbWriteFailures.Inc()
			e.provider.EmitAppEvent(trace.AppEvent{Category: trace.Diagnostic, Message: err.Error()})
			consecutiveFailures++
			if consecutiveFailures == usbWriteFailureThreshold {
				e.log.Printf("engine: %d consecutive USB write failures, raising fault: %v", consecutiveFailures, err)
				e.fsm.DetectFault(safety.UsbError, e.sched.NowNs(), e.lastTorqueNm())
			}
			continue
		}
		if consecutiveFailures >= usbWriteFailureThreshold {
			e.fsm.ClearFault(safety.UsbError)
		}
		consecutiveFailures = 0
	}
}

func (e *Engine) runMetricsSampler(ctx context.Context) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.sampleMetrics()
		}
	}
}

func (e *Engine) sampleMetrics() {
	m := &e.sched.Metrics
	total := m.TotalTicks()
	missed := m.MissedTicks()
	e.metrics.ticksTotal.Add(float64(total - e.lastTicks))
	e.metrics.ticksMissed.Add(float64(missed - e.lastMissed))
	e.lastTicks, e.lastMissed = total, missed

	e.metrics.jitterMaxNs.Set(float64(m.MaxJitterNs()))
	e.metrics.jitterP99Ns.Set(float64(m.P99()))
	e.metrics.queueDepth.Set(float64(e.queue.Len()))

	state := e.fsm.State()
	e.metrics.safetyStateCode.Set(float64(state.Kind))
	e.metrics.faultBitset.Set(float64(state.Faults))
}
