package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Andriiklymiuk/ung-sub008/internal/session"
)

// ActiveSession reports the monitor's current snapshot. This reads
// the polled state, not the tool, so it is cheap enough for UI panels
// to call on every render.
func (s *Server) ActiveSession(c *gin.Context) {
	respond(c, s.monitor.Snapshot())
}

// StreamTicks pushes monitor snapshots as server-sent events so UI
// surfaces can drive a live countdown without polling the daemon.
func (s *Server) StreamTicks(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticks := make(chan session.Snapshot, 8)
	cancel := s.monitor.Subscribe(func(snap session.Snapshot) {
		select {
		case ticks <- snap:
		default:
			// Drop rather than block the poll goroutine; the next
			// tick carries fresher data anyway.
		}
	})
	defer cancel()

	// Send the current state up front so a reconnecting client is not
	// blank until the next poll.
	c.SSEvent("tick", s.monitor.Snapshot())
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case snap := <-ticks:
			c.SSEvent("tick", snap)
			return true
		}
	})
}
