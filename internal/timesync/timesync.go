// Package timesync measures the system clock's offset against an NTP
// server at startup. Failure here is never fatal; the dashboard runs with
// the uncorrected system clock and the display may be off by a little.
package timesync

import (
	"fmt"
	"log"
	"time"

	"github.com/beevik/ntp"
)

const queryTimeout = 5 * time.Second

// Syncer queries an NTP server with a bounded number of attempts.
type Syncer struct {
	Server   string
	Attempts int
	Backoff  time.Duration

	query func(server string) (*ntp.Response, error)
}

func NewSyncer(server string) *Syncer {
	return &Syncer{
		Server:   server,
		Attempts: 3,
		Backoff:  2 * time.Second,
		query:    defaultQuery,
	}
}

func defaultQuery(server string) (*ntp.Response, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: queryTimeout})
	if err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Sync returns the measured clock offset. It retries with a fixed pause
// between attempts and gives up after the configured count; the caller
// decides whether to carry on unsynchronized.
func (s *Syncer) Sync() (time.Duration, error) {
	var lastErr error
	for attempt := 1; attempt <= s.Attempts; attempt++ {
		resp, err := s.query(s.Server)
		if err == nil {
			log.Printf("[TimeSync] Synced against %s: offset %v (attempt %d/%d)",
				s.Server, resp.ClockOffset, attempt, s.Attempts)
			return resp.ClockOffset, nil
		}
		lastErr = err
		log.Printf("[TimeSync] Attempt %d/%d failed: %v", attempt, s.Attempts, err)
		if attempt < s.Attempts {
			time.Sleep(s.Backoff)
		}
	}
	return 0, fmt.Errorf("time sync against %s failed after %d attempts: %w", s.Server, s.Attempts, lastErr)
}
