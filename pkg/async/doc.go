// Package async provides a minimal Future for fan-out work, used to render
// a preview for every recipient of a batch concurrently.
//
//	futures := make([]*async.Future[RenderedEmail], len(rcpts))
//	for i, r := range rcpts {
//		futures[i] = async.Async(ctx, r, renderOne)
//	}
//	rendered, err := async.WaitAll(futures...)
package async
