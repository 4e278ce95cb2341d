// Copyright (C) 2024 duggavo
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package ratelimit scores actions per IP and bans an IP for a while once its
// score exceeds MAX_SCORE within a reset interval.
package ratelimit

import (
	"context"
	"time"

	"ckbaddr/log"

	sync "github.com/sasha-s/go-deadlock"
)

/*
consumption:
encode or decode: 1 (2000 per reset interval)
invalid address: 20 (100 per reset interval)
*/

const (
	ACTION_ENCODE          = 1
	ACTION_DECODE          = 1
	ACTION_INVALID_ADDRESS = 20
)

const MAX_SCORE = 2000
const RESET_INTERVAL = 120 * time.Second
const BAN_DURATION = 5 * 60 // seconds

type Limiter struct {
	mut    sync.Mutex
	scores map[string]uint32
	bans   map[string]int64

	now func() time.Time
}

func New() *Limiter {
	return &Limiter{
		scores: make(map[string]uint32, 500),
		bans:   make(map[string]int64, 10),
		now:    time.Now,
	}
}

func (l *Limiter) Ban(ip string) {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.bans[ip] = l.now().Unix() + BAN_DURATION
}

func (l *Limiter) IsBanned(ip string) bool {
	l.mut.Lock()
	defer l.mut.Unlock()

	return l.bans[ip] > l.now().Unix()
}

func (l *Limiter) Score(ip string) uint32 {
	l.mut.Lock()
	defer l.mut.Unlock()

	return l.scores[ip]
}

// CanDoAction adds requiredScore to the score of ip and reports whether the
// action is allowed.
func (l *Limiter) CanDoAction(ip string, requiredScore uint32) bool {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.scores[ip] += requiredScore
	log.Dev("rate limit score", ip, l.scores[ip], "/", MAX_SCORE)

	t := l.now().Unix()

	if l.bans[ip] > t {
		return false
	}

	if l.scores[ip] > MAX_SCORE {
		l.bans[ip] = t + BAN_DURATION
		log.Warnf("banning %s for %d seconds", ip, BAN_DURATION)
		return false
	}

	return true
}

// Reset clears every score and drops the bans that ended.
func (l *Limiter) Reset() {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.scores = make(map[string]uint32, len(l.scores))

	t := l.now().Unix()
	for ip, ends := range l.bans {
		if ends <= t {
			delete(l.bans, ip)
		}
	}
}

// Run resets the limiter every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Reset()
		}
	}
}
