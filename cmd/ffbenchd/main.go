// Command ffbenchd is a runnable demonstration of the force-feedback
// engine: it drives a synthetic InputSnapshot producer through a
// default filter pipeline and safety interlock, and hands the
// resulting torque reports to an in-process loopback writer that only
// counts them, in place of a real vendor HID transport (out of scope,
// spec.md §1); the count is logged on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trackforce/ffbcore/compiler"
	"github.com/trackforce/ffbcore/curve"
	"github.com/trackforce/ffbcore/encoder"
	"github.com/trackforce/ffbcore/engine"
	"github.com/trackforce/ffbcore/mailbox"
	"github.com/trackforce/ffbcore/safety"
	"github.com/trackforce/ffbcore/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ffbenchd: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(0)
	duration := flag.Duration("duration", 5*time.Second, "how long to run before exiting")
	flag.Parse()

	cfg, err := defaultFilterConfig()
	if err != nil {
		return fmt.Errorf("compile default filter config: %w", err)
	}
	p, err := compiler.Compile(cfg)
	if err != nil {
		return fmt.Errorf("compile default pipeline: %w", err)
	}

	writer := &loopbackWriter{}
	e := engine.New(engine.Config{
		Scheduler: defaultSchedulerConfig(),
		Safety:    defaultSafetyConfig(),

		InitialPipeline:  p,
		Encoder:          encoder.ReferenceEncoder{Min: -2048, Max: 2048, ClockwiseIsPlus: true},
		Writer:           writer,
		MaxRatedTorqueNm: 8,

		Capabilities: []mailbox.EffectMode{mailbox.RawTorque, mailbox.PidPassthrough},
	}, prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	mode := e.NegotiateMode(mailbox.RawTorque)
	log.Printf("ffbenchd: negotiated effect mode %d", mode)

	go feedSyntheticInput(ctx, e.Mailbox())
	go logEvents(ctx, e.Events())

	log.Printf("ffbenchd: running for %s", *duration)
	if err := e.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Printf("ffbenchd: stopped, %d reports written", writer.count)
	return nil
}

// defaultFilterConfig matches spec.md §4.D's worked example: a gentle
// reconstruction filter, a linear response curve, light friction and
// damping, and a torque cap at the normalized [-1, 1] bound.
func defaultFilterConfig() (compiler.FilterConfig, error) {
	return compiler.FilterConfig{
		Reconstruction: &compiler.ReconstructionConfig{CutoffHz: 200},
		ResponseCurve: &compiler.ResponseCurveConfig{
			Parametric: &compiler.ParametricCurveConfig{Type: curve.Linear},
		},
		Friction: &compiler.FrictionConfig{Coeff: 0.05, SpeedScale: 1.0},
		Damper:   &compiler.DamperConfig{Coeff: 0.02},
		TorqueCap: &compiler.TorqueCapConfig{Max: 1.0},
	}, nil
}

func defaultSchedulerConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.MaxMissRate = 0.2 // generous on non-RT demo hardware
	return cfg
}

func defaultSafetyConfig() safety.Config {
	return safety.Config{
		MaxSafeTorqueNm:  2,
		MaxHighTorqueNm:  8,
		HandsOffTimeout:  2 * time.Second,
		ComboHoldMinimum: 500 * time.Millisecond,
		SoftStopDuration: 300 * time.Millisecond,
	}
}

// feedSyntheticInput publishes a slowly oscillating commanded force,
// standing in for a real game/telemetry producer.
func feedSyntheticInput(ctx context.Context, mb *mailbox.Mailbox) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	var seq uint32
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := time.Since(start).Seconds()
			seq++
			mb.Publish(mailbox.InputSnapshot{
				FFBIn:          float32(0.5 * math.Sin(2*math.Pi*0.5*t)),
				WheelSpeedHint: float32(math.Sin(2 * math.Pi * 0.2 * t)),
				Gain:           1,
				Mode:           mailbox.RawTorque,
				ProducerSeq:    seq,
			})
		}
	}
}

func logEvents(ctx context.Context, events <-chan engine.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			log.Printf("ffbenchd: event %+v", ev)
		}
	}
}

// loopbackWriter stands in for a real USB HID device (out of scope,
// spec.md §1): it just counts reports, matching
// cmd/controller/platform_dummy.go's "no real hardware backend"
// pattern for environments without the target device attached.
type loopbackWriter struct {
	count int
}

func (w *loopbackWriter) WriteOutputReport(data []byte) (int, error) {
	w.count++
	return len(data), nil
}

func (w *loopbackWriter) WriteFeatureReport(data []byte) (int, error) {
	return len(data), nil
}
