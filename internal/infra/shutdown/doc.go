// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT or SIGTERM, or for its context to end, then
// runs the registered hooks in reverse order of registration under a
// shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
