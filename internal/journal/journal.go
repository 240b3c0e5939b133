// Package journal keeps the child's daily mood/food/insulin log and the weekly
// sugar readings. Logging a day earns stars through the ledger in the same
// commit as the log itself.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

// Storage keys.
const (
	LogsKey     = "journal"
	ReadingsKey = "readings"
)

// LogReward is the number of stars earned for a day's log.
const LogReward = 10

const dateLayout = "2006-01-02"

var (
	ErrInvalidEntry   = errors.New("invalid journal entry")
	ErrAlreadyLogged  = errors.New("already logged today")
	ErrInvalidReading = errors.New("invalid sugar reading")
)

// Mood is how the child felt today.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
)

// Food rates what the child ate today.
type Food string

const (
	FoodHealthy Food = "healthy"
	FoodSoSo    Food = "soso"
	FoodSweets  Food = "sweets"
)

// Insulin records whether today's insulin was taken.
type Insulin string

const (
	InsulinYes Insulin = "yes"
	InsulinNo  Insulin = "no"
)

// Feedback classifies the day for the encouragement message shown to the child.
type Feedback string

const (
	FeedbackGreat     Feedback = "great"
	FeedbackEncourage Feedback = "encourage"
)

// DailyLog is one day's entry. Date is YYYY-MM-DD in UTC.
type DailyLog struct {
	Date    string  `json:"date"`
	Mood    Mood    `json:"mood"`
	Food    Food    `json:"food"`
	Insulin Insulin `json:"insulin"`
}

// Entry is what the child submits; the date is supplied by the journal.
type Entry struct {
	Mood    Mood    `json:"mood"`
	Food    Food    `json:"food"`
	Insulin Insulin `json:"insulin"`
}

// Validate reports whether every field holds a known value.
func (e Entry) Validate() error {
	switch e.Mood {
	case MoodHappy, MoodNeutral, MoodSad:
	default:
		return fmt.Errorf("%w: mood %q", ErrInvalidEntry, e.Mood)
	}
	switch e.Food {
	case FoodHealthy, FoodSoSo, FoodSweets:
	default:
		return fmt.Errorf("%w: food %q", ErrInvalidEntry, e.Food)
	}
	switch e.Insulin {
	case InsulinYes, InsulinNo:
	default:
		return fmt.Errorf("%w: insulin %q", ErrInvalidEntry, e.Insulin)
	}
	return nil
}

// FeedbackFor returns FeedbackGreat when insulin was taken and food was not sweets.
func FeedbackFor(e Entry) Feedback {
	if e.Insulin == InsulinYes && (e.Food == FoodHealthy || e.Food == FoodSoSo) {
		return FeedbackGreat
	}
	return FeedbackEncourage
}

// Result is returned by Record.
type Result struct {
	Log         DailyLog `json:"log"`
	Feedback    Feedback `json:"feedback"`
	StarsEarned int      `json:"stars_earned"`
	Stars       int      `json:"stars"`
}

// Day is one slot of the weekly progress view.
type Day struct {
	Date    string    `json:"date"`
	Weekday string    `json:"weekday"`
	Log     *DailyLog `json:"log,omitempty"`
}

// Journal records daily logs and sugar readings.
type Journal struct {
	kv     store.KV
	ledger *ledger.Ledger
	logger *slog.Logger
}

// New creates a Journal. Reads go to kv directly; writes go through l so they
// are serialized with star changes.
func New(kv store.KV, l *ledger.Ledger, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{kv: kv, ledger: l, logger: logger}
}

func (j *Journal) today() time.Time {
	return j.ledger.Clock().Now().UTC()
}

// readJSON decodes key into v. Missing or corrupt values leave v untouched.
func readJSON(kv store.KV, logger *slog.Logger, key string, v any) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		logger.Warn("reading journal state failed", "key", key, "err", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("corrupt journal state, ignoring", "key", key, "err", err)
	}
}

func writeJSON(kv store.KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func readLogs(kv store.KV, logger *slog.Logger) []DailyLog {
	var logs []DailyLog
	readJSON(kv, logger, LogsKey, &logs)
	if logs == nil {
		logs = []DailyLog{}
	}
	return logs
}

// Logs returns every recorded day in the order they were logged.
func (j *Journal) Logs() []DailyLog {
	return readLogs(j.kv, j.logger)
}

// Record stores today's entry and credits LogReward stars. A day can only be
// logged once.
func (j *Journal) Record(e Entry) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	date := j.today().Format(dateLayout)

	var res Result
	err := j.ledger.Update(func(tx *ledger.Tx) error {
		logs := readLogs(tx.KV(), j.logger)
		for _, l := range logs {
			if l.Date == date {
				return fmt.Errorf("%w: %s", ErrAlreadyLogged, date)
			}
		}
		entry := DailyLog{Date: date, Mood: e.Mood, Food: e.Food, Insulin: e.Insulin}
		if err := writeJSON(tx.KV(), LogsKey, append(logs, entry)); err != nil {
			return err
		}
		total, err := tx.Add(LogReward)
		if err != nil {
			return err
		}
		res = Result{
			Log:         entry,
			Feedback:    FeedbackFor(e),
			StarsEarned: LogReward,
			Stars:       total,
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("record journal: %w", err)
	}
	j.logger.Debug("journal recorded", "date", date, "feedback", res.Feedback)
	return res, nil
}

// LoggedToday reports whether today already has a log.
func (j *Journal) LoggedToday() bool {
	date := j.today().Format(dateLayout)
	for _, l := range j.Logs() {
		if l.Date == date {
			return true
		}
	}
	return false
}

// Week returns the last seven days ending today, oldest first.
func (j *Journal) Week() []Day {
	byDate := make(map[string]DailyLog)
	for _, l := range j.Logs() {
		if _, ok := byDate[l.Date]; !ok {
			byDate[l.Date] = l
		}
	}

	now := j.today()
	days := make([]Day, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		date := d.Format(dateLayout)
		day := Day{Date: date, Weekday: d.Weekday().String()}
		if l, ok := byDate[date]; ok {
			day.Log = &l
		}
		days = append(days, day)
	}
	return days
}
