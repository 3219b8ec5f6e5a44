// Package stats maintains per-room, per-user chat activity counters.
package stats

import (
	"log/slog"
	"sort"
	"time"

	"github.com/molubot/molubot/internal/store"
)

// Record is the running counter for one user in one room. FirstSeen is set
// once and never changes; MessageCount and LastActive only move forward.
type Record struct {
	MessageCount int       `json:"message_count"`
	FirstSeen    time.Time `json:"first_seen"`
	LastActive   time.Time `json:"last_active"`
}

// document: room → user → record.
type document map[string]map[string]*Record

// Ledger tracks chat activity in a single JSON document. It is telemetry, not
// primary state: recording never fails the message path.
type Ledger struct {
	file *store.JSONFile
	now  func() time.Time
}

// New creates a ledger backed by the document at path.
func New(path string) *Ledger {
	return &Ledger{file: store.NewJSONFile(path), now: time.Now}
}

// Record counts one message from userID in room. Write failures are logged
// and swallowed; a stats failure must never abort message handling.
func (l *Ledger) Record(room, userID, message string) {
	doc := document{}
	err := l.file.Update(&doc, func() error {
		users := doc[room]
		if users == nil {
			users = map[string]*Record{}
			doc[room] = users
		}
		rec := users[userID]
		if rec == nil {
			rec = &Record{FirstSeen: l.now()}
			users[userID] = rec
		}
		rec.MessageCount++
		rec.LastActive = l.now()
		return nil
	})
	if err != nil {
		slog.Warn("chat stats record failed", "room", room, "user", userID, "error", err)
	}
}

// RankEntry is one row of the room ranking.
type RankEntry struct {
	Rank         int
	UserID       string
	MessageCount int
}

// RoomSummary aggregates one room's activity.
type RoomSummary struct {
	TotalMessages int
	ActiveUsers   int
	Top           []RankEntry
}

// RoomSummary returns totals and the top-10 ranking for room. Ranking is by
// message count descending; ties go to the earlier FirstSeen. Returns
// store.ErrNotFound if the room has no records.
func (l *Ledger) RoomSummary(room string) (RoomSummary, error) {
	doc := document{}
	if err := l.file.Load(&doc); err != nil {
		return RoomSummary{}, err
	}
	users := doc[room]
	if len(users) == 0 {
		return RoomSummary{}, store.ErrNotFound
	}

	type userRec struct {
		id  string
		rec *Record
	}
	ranked := make([]userRec, 0, len(users))
	total := 0
	for id, rec := range users {
		ranked = append(ranked, userRec{id: id, rec: rec})
		total += rec.MessageCount
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].rec.MessageCount != ranked[j].rec.MessageCount {
			return ranked[i].rec.MessageCount > ranked[j].rec.MessageCount
		}
		return ranked[i].rec.FirstSeen.Before(ranked[j].rec.FirstSeen)
	})

	summary := RoomSummary{TotalMessages: total, ActiveUsers: len(ranked)}
	for i, u := range ranked {
		if i >= 10 {
			break
		}
		summary.Top = append(summary.Top, RankEntry{
			Rank:         i + 1,
			UserID:       u.id,
			MessageCount: u.rec.MessageCount,
		})
	}
	return summary, nil
}

// UserSummary describes one user's activity in a room.
type UserSummary struct {
	MessageCount int
	PerActiveDay float64
	FirstSeen    time.Time
	LastActive   time.Time
}

// UserSummary returns userID's stats in room, or store.ErrNotFound.
func (l *Ledger) UserSummary(room, userID string) (UserSummary, error) {
	doc := document{}
	if err := l.file.Load(&doc); err != nil {
		return UserSummary{}, err
	}
	rec, ok := doc[room][userID]
	if !ok {
		return UserSummary{}, store.ErrNotFound
	}

	// +1 keeps the divisor ≥ 1 for same-day first/last activity.
	days := int(rec.LastActive.Sub(rec.FirstSeen).Hours()/24) + 1
	return UserSummary{
		MessageCount: rec.MessageCount,
		PerActiveDay: float64(rec.MessageCount) / float64(days),
		FirstSeen:    rec.FirstSeen,
		LastActive:   rec.LastActive,
	}, nil
}
