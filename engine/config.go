// Package engine wires the scheduler, pipeline, safety interlock,
// torque encoder and tracing provider into the running force-feedback
// loop, and exposes the non-RT control surface (pipeline swaps, mode
// negotiation, safety arming, metrics) that a host application drives.
package engine

import (
	"log"

	"github.com/trackforce/ffbcore/encoder"
	"github.com/trackforce/ffbcore/mailbox"
	"github.com/trackforce/ffbcore/pipeline"
	"github.com/trackforce/ffbcore/safety"
	"github.com/trackforce/ffbcore/scheduler"
	"github.com/trackforce/ffbcore/trace"
)

// Config assembles everything an Engine needs for one lifetime. All
// fields are required except Provider, which defaults to a
// trace.NoopProvider, and Logger, which defaults to log.Default().
type Config struct {
	Scheduler scheduler.Config
	Safety    safety.Config

	InitialPipeline *pipeline.Pipeline
	Encoder         encoder.TorqueEncoder
	Writer          encoder.DeviceWriter
	Provider        trace.Provider

	// Logger receives diagnostics: config swap acceptance/
	// rejection, fault transitions, consecutive-failure escalation,
	// and shutdown. Defaults to log.Default(). Two of these writes run
	// on the RT loop goroutine: the one-time torque-saturation log when
	// the consecutive count reaches its threshold, and the shutdown
	// log after the loop's final tick.
	Logger *log.Logger

	// MaxRatedTorqueNm converts a Frame's normalized [-1, 1]
	// TorqueOut into the Newton-meters safety.FSM and the
	// TorqueEncoder operate in.
	MaxRatedTorqueNm float32

	// Capabilities lists the EffectModes the attached device
	// supports, most-preferred first. NegotiateMode consults this.
	Capabilities []mailbox.EffectMode
}

func (c Config) provider() trace.Provider {
	if c.Provider != nil {
		return c.Provider
	}
	return trace.NoopProvider{}
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
