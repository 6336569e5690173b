package healthz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("healthz", "server health monitoring")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

type check struct {
	last    time.Time
	timeout time.Duration
}

var (
	checks = map[string]*check{}
	lock   sync.Mutex
)

// Start configures a check. It is outdated if it is not
// ticked within three periods.
func Start(key string, period time.Duration) {
	lock.Lock()
	defer lock.Unlock()

	checks[key] = &check{time.Now(), 3 * period}
}

func Tick(key string) {
	lock.Lock()
	defer lock.Unlock()

	c := checks[key]
	if c == nil {
		panic(fmt.Sprintf("check with key %q not configured", key))
	}
	c.last = time.Now()
}

func End(key string) {
	lock.Lock()
	defer lock.Unlock()

	delete(checks, key)
}

// Monitor runs a probe periodically until the context is cancelled
// and ticks the check for every successful probe.
func Monitor(ctx context.Context, key string, period time.Duration, probe func() error) {
	Start(key, period)
	go func() {
		defer End(key)
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			if err := probe(); err != nil {
				log.Warn("health probe {{key}} failed", "key", key, "error", err)
			} else {
				Tick(key)
			}
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}

func IsHealthy() bool {
	ok, _ := HealthInfo()
	return ok
}

// HealthInfo reports the last tick of all checks.
func HealthInfo() (bool, string) {
	lock.Lock()
	defer lock.Unlock()

	keys := make([]string, 0, len(checks))
	for k := range checks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ok := true
	info := ""
	limit := time.Now()
	for _, key := range keys {
		c := checks[key]
		info = fmt.Sprintf("%s%s: %s\n", info, key, c.last.Format(time.RFC3339))
		if c.last.Before(limit.Add(-c.timeout)) {
			log.Warn("outdated health check {{key}}", "key", key, "delay", limit.Sub(c.last))
			ok = false
		}
	}
	return ok, info
}
