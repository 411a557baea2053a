package bot

import (
	"log"
	"sync"
	"time"

	"modguard/utils/database"
)

const expirySweepInterval = time.Minute

// Scheduler runs the background punishment-expiry sweep: timeouts and
// temporary bans whose expiry has passed are closed with the SYSTEM marker
// so "active" queries stay accurate even if the removal audit event was
// missed.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runExpirySweep()
}

func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runExpirySweep() {
	defer s.wg.Done()

	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			processed, err := database.ProcessExpiredPunishments(s.bot.DB)
			if err != nil {
				log.Printf("[Scheduler] Expiry sweep failed: %v", err)
				continue
			}
			if len(processed) > 0 {
				log.Printf("[Scheduler] Closed %d expired punishments", len(processed))
			}
		case <-s.done:
			return
		}
	}
}
