package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"docchat/internal/service"
)

// setStreamHeaders prepares the response for SSE-style streaming.
func setStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

// writeEvent emits one {type, data} record and flushes it to the client.
func writeEvent(c *gin.Context, event service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

// writeDone terminates the stream with the sentinel record.
func writeDone(c *gin.Context) {
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}
