package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// OTPCleaner removes expired login codes.
type OTPCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Maintenance runs periodic housekeeping in the background.
type Maintenance struct {
	otps     OTPCleaner
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewMaintenance(otps OTPCleaner, interval time.Duration) *Maintenance {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Maintenance{
		otps:     otps,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval until Stop.
func (m *Maintenance) Start() {
	log.Println("[Maintenance] Starting background housekeeping...")
	m.runOnce()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.runOnce()
			case <-m.stopChan:
				log.Println("[Maintenance] Stopping background housekeeping...")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a running pass to finish.
func (m *Maintenance) Stop() {
	close(m.stopChan)
	m.wg.Wait()
}

func (m *Maintenance) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := m.otps.CleanupExpired(ctx)
	if err != nil {
		log.Printf("[Maintenance] OTP cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Maintenance] removed %d expired OTPs", n)
	}
}
