// Package async provides the cooperative job loop and promise type that
// asynchronous actions settle through.
//
// A Loop is a thread-safe FIFO of jobs. Jobs only run when some goroutine
// drives the loop (RunPending, RunUntil, Run, or Promise.Await), so settlement
// handlers never run in the middle of a Dispatch. A Promise settled from a
// background goroutine posts its handlers to the loop rather than running
// them in place.
//
//	loop := async.NewLoop()
//	p := async.Go(loop, func() (any, error) { return fetch() })
//	v, err := p.Await(ctx)
//
// Anything implementing Thenable can be tracked by the promise middleware;
// *Promise is the implementation the rest of the module uses.
package async
