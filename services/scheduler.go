// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartMaturationScheduler approves pending earnings once they survive the
// hold period without a chargeback. Approval is the gate between raw
// conversion signals and payable balance.
func (s *EarningService) StartMaturationScheduler(holdPeriod time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Hourly: mature pending earnings past the hold period
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			approved, err := s.ApproveMatured(holdPeriod)
			if err != nil {
				log.Printf("[Scheduler] Earning maturation failed: %v", err)
				return
			}
			if approved > 0 {
				log.Printf("✅ Auto-approved %d matured earning(s)", approved)
			}
		}),
	)
}
