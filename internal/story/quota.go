package story

import (
	"sync"

	"github.com/sethgrid/pelioscope/internal/clock"
)

// DailyNarrationLimit is the number of narrated play-throughs per calendar day.
const DailyNarrationLimit = 10

const dateLayout = "2006-01-02"

// QuotaRecord is the persisted form of the quota.
type QuotaRecord struct {
	Date  string `toml:"date"`
	Count int    `toml:"count"`
}

// Quota counts narrations against a per-day limit. The count starts over
// whenever the local date differs from the recorded one.
type Quota struct {
	mu       sync.Mutex
	rec      QuotaRecord
	limit    int
	clk      clock.Clock
	onChange func(QuotaRecord)
}

func NewQuota(rec QuotaRecord, limit int, clk clock.Clock) *Quota {
	if clk == nil {
		clk = clock.Real{}
	}
	if limit <= 0 {
		limit = DailyNarrationLimit
	}
	return &Quota{rec: rec, limit: limit, clk: clk}
}

func (q *Quota) OnChange(fn func(QuotaRecord)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = fn
}

func (q *Quota) Limit() int { return q.limit }

func (q *Quota) Record() QuotaRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	return q.rec
}

func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	if n := q.limit - q.rec.Count; n > 0 {
		return n
	}
	return 0
}

func (q *Quota) Exceeded() bool {
	return q.Remaining() == 0
}

// Use records one narration. It reports false, without counting, when the
// limit is already reached.
func (q *Quota) Use() bool {
	q.mu.Lock()
	q.rolloverLocked()
	if q.rec.Count >= q.limit {
		q.mu.Unlock()
		return false
	}
	q.rec.Count++
	rec, fn := q.rec, q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(rec)
	}
	return true
}

func (q *Quota) rolloverLocked() {
	today := q.clk.Now().Local().Format(dateLayout)
	if q.rec.Date != today {
		q.rec = QuotaRecord{Date: today}
	}
}
