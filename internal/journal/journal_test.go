package journal

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/internal/notify"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

func newTestJournal(t *testing.T) (*Journal, *ledger.Ledger, *store.Memory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := store.NewMemory()
	l := ledger.New(kv, ledger.WithLogger(logger))
	return New(kv, l, logger), l, kv
}

func todayUTC() string {
	return time.Now().UTC().Format(dateLayout)
}

func TestRecordEarnsStars(t *testing.T) {
	j, l, _ := newTestJournal(t)
	l.Add(5)

	res, err := j.Record(Entry{Mood: MoodHappy, Food: FoodHealthy, Insulin: InsulinYes})
	require.NoError(t, err)

	assert.Equal(t, LogReward, res.StarsEarned)
	assert.Equal(t, 15, res.Stars)
	assert.Equal(t, 15, l.Stars())
	assert.Equal(t, FeedbackGreat, res.Feedback)
	assert.Equal(t, todayUTC(), res.Log.Date)

	logs := j.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, res.Log, logs[0])
	assert.True(t, j.LoggedToday())
}

func TestRecordOncePerDay(t *testing.T) {
	j, l, _ := newTestJournal(t)
	_, err := j.Record(Entry{Mood: MoodSad, Food: FoodSweets, Insulin: InsulinNo})
	require.NoError(t, err)

	_, err = j.Record(Entry{Mood: MoodHappy, Food: FoodHealthy, Insulin: InsulinYes})
	require.ErrorIs(t, err, ErrAlreadyLogged)
	assert.Equal(t, LogReward, l.Stars(), "duplicate log earns nothing")
	assert.Len(t, j.Logs(), 1)
}

func TestRecordNextDayAllowed(t *testing.T) {
	j, l, _ := newTestJournal(t)
	_, err := j.Record(Entry{Mood: MoodNeutral, Food: FoodSoSo, Insulin: InsulinYes})
	require.NoError(t, err)

	l.Clock().Advance(24 * time.Hour)
	_, err = j.Record(Entry{Mood: MoodNeutral, Food: FoodSoSo, Insulin: InsulinYes})
	require.NoError(t, err)
	assert.Equal(t, 2*LogReward, l.Stars())
}

func TestRecordRejectsInvalidEntry(t *testing.T) {
	j, l, kv := newTestJournal(t)
	for name, e := range map[string]Entry{
		"empty":       {},
		"bad mood":    {Mood: "angry", Food: FoodHealthy, Insulin: InsulinYes},
		"bad food":    {Mood: MoodHappy, Food: "pizza", Insulin: InsulinYes},
		"bad insulin": {Mood: MoodHappy, Food: FoodHealthy, Insulin: "maybe"},
	} {
		_, err := j.Record(e)
		assert.ErrorIs(t, err, ErrInvalidEntry, name)
	}
	_, ok, _ := kv.Get(LogsKey)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Stars())
}

func TestFeedbackFor(t *testing.T) {
	cases := []struct {
		food    Food
		insulin Insulin
		want    Feedback
	}{
		{FoodHealthy, InsulinYes, FeedbackGreat},
		{FoodSoSo, InsulinYes, FeedbackGreat},
		{FoodSweets, InsulinYes, FeedbackEncourage},
		{FoodHealthy, InsulinNo, FeedbackEncourage},
		{FoodSweets, InsulinNo, FeedbackEncourage},
	}
	for _, tc := range cases {
		got := FeedbackFor(Entry{Mood: MoodHappy, Food: tc.food, Insulin: tc.insulin})
		assert.Equal(t, tc.want, got, "%s/%s", tc.food, tc.insulin)
	}
}

func TestRecordPublishesStarUpdate(t *testing.T) {
	j, l, _ := newTestJournal(t)
	calls := 0
	l.Broadcaster().Subscribe(notify.StarUpdate, func() { calls++ })

	j.Record(Entry{Mood: MoodHappy, Food: FoodHealthy, Insulin: InsulinYes})
	j.Record(Entry{Mood: MoodHappy, Food: FoodHealthy, Insulin: InsulinYes})
	assert.Equal(t, 1, calls)
}

func TestCorruptLogsTreatedAsEmpty(t *testing.T) {
	j, _, kv := newTestJournal(t)
	kv.Set(LogsKey, "{broken")

	assert.Empty(t, j.Logs())
	_, err := j.Record(Entry{Mood: MoodHappy, Food: FoodHealthy, Insulin: InsulinYes})
	require.NoError(t, err)
	assert.Len(t, j.Logs(), 1)
}

func TestWeek(t *testing.T) {
	j, l, _ := newTestJournal(t)

	// Log two days ago, then come back to today.
	l.Clock().Advance(-48 * time.Hour)
	_, err := j.Record(Entry{Mood: MoodSad, Food: FoodSweets, Insulin: InsulinNo})
	require.NoError(t, err)
	l.Clock().Reset()

	week := j.Week()
	require.Len(t, week, 7)
	assert.Equal(t, todayUTC(), week[6].Date)
	assert.Equal(t, time.Now().UTC().Weekday().String(), week[6].Weekday)
	for i := 1; i < len(week); i++ {
		assert.Less(t, week[i-1].Date, week[i].Date, "oldest first")
	}

	for i, d := range week {
		if i == 4 {
			require.NotNil(t, d.Log)
			assert.Equal(t, MoodSad, d.Log.Mood)
			continue
		}
		assert.Nil(t, d.Log, "day %s", d.Date)
	}
}
