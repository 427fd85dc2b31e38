// Package clock provides the time sources that drive feed sampling.
//
// This package is internal to pista. The main components are:
//
//   - [Clock]: emits a [Tick] once per interval over a single-slot rendezvous channel
//   - [Sleeper]: pauses between attempts; [Real] uses the wall clock, [Fake] records delays
//
// A Clock never queues ticks. If the consumer is still busy when the next
// interval elapses, the Clock waits for the consumer to take the pending tick
// and drops any tick that fired meanwhile, so at most one tick is ever
// outstanding.
package clock
