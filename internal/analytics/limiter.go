package analytics

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/crimson-sun/beacon/internal/model"
)

// kindLimit tracks one registered event kind and its hourly budget.
// The limiter refills at MaxPerHour per hour with the full hour's quota
// available as burst, matching how analytics backends meter event kinds.
type kindLimit struct {
	reg     model.Registration
	limiter *rate.Limiter // nil when the kind is unmetered
}

func newKindLimit(r model.Registration) *kindLimit {
	kl := &kindLimit{reg: r}
	if r.MaxPerHour > 0 {
		kl.limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(r.MaxPerHour)), r.MaxPerHour)
	}
	return kl
}

// allow consumes one event from the budget, reporting false when the
// budget is exhausted.
func (kl *kindLimit) allow() bool {
	if kl.limiter == nil {
		return true
	}
	return kl.limiter.Allow()
}
