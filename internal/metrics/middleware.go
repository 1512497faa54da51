package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ticktui/ticktui/internal/logging"
)

// Middleware records metrics for each request served by the redirect listener.
func Middleware(m *Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m != nil {
			m.CallbackInFlight.Inc()
		}
		c.Next()
		if m != nil {
			m.CallbackInFlight.Dec()
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordCallbackRequest(endpoint, strconv.Itoa(c.Writer.Status()))

		if len(c.Errors) > 0 {
			logger.ErrorWithContext(c.Request.Context(), "callback request error", "error", c.Errors.String())
		}
	}
}
