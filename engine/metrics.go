package engine

import "github.com/prometheus/client_golang/prometheus"

// metricsCollector holds the non-RT Prometheus gauges/counters an
// Engine samples from scheduler.JitterMetrics, safety.FSM and the RT
// loop's own tick-local bookkeeping once per sampling interval
// (spec.md §6, "Outbound: Observer counters"). The RT loop itself also
// updates outputReportsLost and the two torque-saturation metrics
// directly.
type metricsCollector struct {
	ticksTotal        prometheus.Counter
	ticksMissed       prometheus.Counter
	jitterMaxNs       prometheus.Gauge
	jitterP99Ns       prometheus.Gauge
	queueDepth        prometheus.Gauge
	outputReportsLost prometheus.Counter

	safetyStateCode       prometheus.Gauge
	faultBitset           prometheus.Gauge
	torqueSaturationCount prometheus.Gauge
	torqueSaturationTotal prometheus.Counter
	usbWriteFailures      prometheus.Counter
}

func newMetricsCollector(reg prometheus.Registerer) *metricsCollector {
	m := &metricsCollector{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffb_scheduler_ticks_total", Help: "Total RT ticks produced.",
		}),
		ticksMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffb_scheduler_ticks_missed_total", Help: "Ticks whose deadline had already passed.",
		}),
		jitterMaxNs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_scheduler_jitter_max_ns", Help: "Maximum observed tick arrival jitter, in nanoseconds.",
		}),
		jitterP99Ns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_scheduler_jitter_p99_ns", Help: "Rolling p99 tick arrival jitter, in nanoseconds.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_encoder_queue_depth", Help: "Staged, unwritten output reports.",
		}),
		outputReportsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffb_encoder_reports_lost_total", Help: "Output reports overwritten before the I/O writer read them.",
		}),
		safetyStateCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_safety_state_code", Help: "Current safety.StateKind, as its numeric discriminant.",
		}),
		faultBitset: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_safety_fault_bitset", Help: "Current outstanding safety.FaultSet, as its numeric bitmask.",
		}),
		torqueSaturationCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ffb_torque_saturation_count", Help: "Consecutive ticks the safety clamp has saturated the requested torque.",
		}),
		torqueSaturationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffb_torque_saturation_total", Help: "Total ticks the safety clamp has saturated the requested torque.",
		}),
		usbWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ffb_usb_write_failures_total", Help: "Total DeviceWriter.WriteOutputReport failures.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ticksTotal, m.ticksMissed, m.jitterMaxNs, m.jitterP99Ns,
			m.queueDepth, m.outputReportsLost, m.safetyStateCode, m.faultBitset,
			m.torqueSaturationCount, m.torqueSaturationTotal, m.usbWriteFailures)
	}
	return m
}
