package sync

import (
	"time"

	"github.com/0xPolygon/msgrelayer/log"
)

// RetryHandler sleeps between attempts of an operation that can fail
// transiently and gives up once the attempts are exhausted
type RetryHandler struct {
	RetryAfterErrorPeriod time.Duration
	// MaxRetryAttemptsAfterError smaller than zero means unlimited retries
	MaxRetryAttemptsAfterError int
}

// Handle is called after the attempts-th failure of funcName
func (h *RetryHandler) Handle(funcName string, attempts int) {
	if h.MaxRetryAttemptsAfterError > -1 && attempts >= h.MaxRetryAttemptsAfterError {
		log.Fatalf(
			"%s failed too many times (%d)",
			funcName, h.MaxRetryAttemptsAfterError,
		)
	}
	time.Sleep(h.RetryAfterErrorPeriod)
}
