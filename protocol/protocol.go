// Package protocol implements the two roles of the ping-pong switch
// measurement.
//
// Per round trip the initiator runs the workload, hands a token to the
// responder and blocks until the token comes back. The responder blocks
// for the token, runs the same workload and hands it back. Only one side
// computes at a time, so every handoff forces a switch.
package protocol

import (
	"fmt"
	"time"

	"github.com/sarchlab/ctxswitch/handoff"
	"github.com/sarchlab/ctxswitch/timing/clock"
	"github.com/sarchlab/ctxswitch/workload"
)

// Token is the byte carried by every handoff.
const Token byte = 'x'

// Role is the immutable state shared by both execution units of a round.
type Role struct {
	Params     workload.Params
	RoundTrips int
	Pair       *handoff.Pair
}

// Respond runs the responder side: receive on A, run the workload once,
// send on B.
func (r Role) Respond(buf []float64) error {
	for i := 0; i < r.RoundTrips; i++ {
		if _, err := r.Pair.A.Receive(); err != nil {
			return fmt.Errorf("responder receive %d: %w", i, err)
		}
		workload.Run(buf, r.Params, 1)
		if err := r.Pair.B.Send(Token); err != nil {
			return fmt.Errorf("responder send %d: %w", i, err)
		}
	}
	return nil
}

// Initiate runs the timed initiator side: run the workload once, send on
// A, receive on B. The clock starts right before the first workload run
// and stops right after the last receive.
func (r Role) Initiate(buf []float64, clk clock.Clock) (time.Duration, error) {
	start := clk.Now()
	for i := 0; i < r.RoundTrips; i++ {
		workload.Run(buf, r.Params, 1)
		if err := r.Pair.A.Send(Token); err != nil {
			return 0, fmt.Errorf("initiator send %d: %w", i, err)
		}
		if _, err := r.Pair.B.Receive(); err != nil {
			return 0, fmt.Errorf("initiator receive %d: %w", i, err)
		}
	}
	return clock.Since(clk, start), nil
}

// PerHandoff converts the elapsed time of a round into the time of one
// directional handoff. Every round trip holds two handoffs.
func PerHandoff(elapsed time.Duration, roundTrips int, scale float64) float64 {
	return elapsed.Seconds() / float64(2*roundTrips) * scale
}
