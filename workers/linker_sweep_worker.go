// workers/linker_sweep_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"affiliate-dashboard-system/services"
)

// PollUnlinkedEarnings periodically re-runs attribution over earnings that
// arrived before their click was recorded. The linker itself is atomic and
// idempotent, so overlapping sweeps are harmless — the worst case is a
// wasted query.
func PollUnlinkedEarnings(ctx context.Context, linker *services.LinkerService, pollInterval time.Duration) {
	log.Println("Starting conversion linker sweep…")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Conversion linker sweep stopped.")
			return
		case <-ticker.C:
			linked, err := linker.SweepUnlinked()
			if err != nil {
				log.Printf("❌ Linker sweep failed: %v", err)
				continue
			}
			if linked > 0 {
				log.Printf("✅ Linker sweep attributed %d conversion(s)", linked)
			}
		}
	}
}
