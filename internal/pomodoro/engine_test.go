package pomodoro

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/dayflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	e := NewEngine(s, nil)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	return e, s
}

func ticks(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

// runWork drains a full work countdown and fires the completion tick.
func runWork(e *Engine) Event {
	ticks(e, e.Snapshot().TimeRemaining)
	return e.Tick()
}

type failingDocs struct{}

func (failingDocs) GetJSON(string, any) error { return store.ErrNotFound }
func (failingDocs) SetJSON(string, any) error { return errors.New("quota exceeded") }

func TestInitialState(t *testing.T) {
	e, _ := newTestEngine(t)
	st := e.Snapshot()

	assert.False(t, st.Active)
	assert.Equal(t, ModeWork, st.Mode)
	assert.Equal(t, 1500, st.TimeRemaining)
	assert.Equal(t, 0, st.CompletedPomodoros)
	assert.Nil(t, st.CurrentSession)
	assert.Equal(t, DefaultSettings(), e.Settings())
}

func TestStart(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SwitchMode(ModeLongBreak)

	e.Start("task-1")
	st := e.Snapshot()
	assert.True(t, st.Active)
	assert.Equal(t, ModeWork, st.Mode)
	assert.Equal(t, 1500, st.TimeRemaining)
	require.NotNil(t, st.CurrentSession)
	assert.Equal(t, "s1", st.CurrentSession.ID)
	assert.Equal(t, "task-1", st.CurrentSession.TaskID)
	assert.True(t, st.CurrentSession.EndTime.IsZero())
}

func TestStartResetsCount(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")
	runWork(e)
	require.Equal(t, 1, e.Snapshot().CompletedPomodoros)

	e.Start("")
	assert.Equal(t, 0, e.Snapshot().CompletedPomodoros)
	assert.Equal(t, "s2", e.Snapshot().CurrentSession.ID)
}

func TestTickInactiveIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.Equal(t, EventNone, e.Tick())
	assert.Equal(t, 1500, e.Snapshot().TimeRemaining)
}

// 1500 ticks drain a 25 minute countdown; the following tick performs the
// single completion transition.
func TestWorkCountdownCompletes(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")

	ticks(e, 1500)
	st := e.Snapshot()
	assert.Equal(t, 0, st.TimeRemaining)
	assert.Equal(t, ModeWork, st.Mode)
	assert.Equal(t, 0, st.CompletedPomodoros)

	assert.Equal(t, EventWorkComplete, e.Tick())
	st = e.Snapshot()
	assert.Equal(t, 1, st.CompletedPomodoros)
	assert.Equal(t, ModeShortBreak, st.Mode)
	assert.Equal(t, 300, st.TimeRemaining)
}

func TestFourthCompletionIsLongBreak(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")

	for i := 1; i <= 4; i++ {
		require.Equal(t, EventWorkComplete, runWork(e))
		st := e.Snapshot()
		require.Equal(t, i, st.CompletedPomodoros)
		if i < 4 {
			require.Equal(t, ModeShortBreak, st.Mode, "completion %d", i)
		} else {
			require.Equal(t, ModeLongBreak, st.Mode)
			require.Equal(t, 900, st.TimeRemaining)
		}
		// drain the break and return to work
		ticks(e, st.TimeRemaining)
		require.Equal(t, EventBreakComplete, e.Tick())
		require.Equal(t, ModeWork, e.Snapshot().Mode)
		require.Equal(t, 1500, e.Snapshot().TimeRemaining)
	}
}

func TestLongBreakEveryNth(t *testing.T) {
	e, _ := newTestEngine(t)
	two := 2
	require.NoError(t, e.UpdateSettings(SettingsPatch{SessionsBeforeLongBreak: &two}))
	e.Start("")

	want := []Mode{ModeShortBreak, ModeLongBreak, ModeShortBreak, ModeLongBreak}
	for i, m := range want {
		runWork(e)
		assert.Equal(t, m, e.Snapshot().Mode, "completion %d", i+1)
		e.SwitchMode(ModeWork)
	}
}

func TestSingleSessionCycleAlwaysLong(t *testing.T) {
	e, _ := newTestEngine(t)
	one := 1
	require.NoError(t, e.UpdateSettings(SettingsPatch{SessionsBeforeLongBreak: &one}))
	e.Start("")
	runWork(e)
	assert.Equal(t, ModeLongBreak, e.Snapshot().Mode)
}

func TestPauseFreezesCountdown(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")
	ticks(e, 10)

	e.Pause()
	before := e.Snapshot().TimeRemaining
	ticks(e, 500)
	assert.Equal(t, before, e.Snapshot().TimeRemaining)
	assert.False(t, e.Active())

	e.Resume()
	e.Tick()
	assert.Equal(t, before-1, e.Snapshot().TimeRemaining)
}

func TestSwitchMode(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")
	ticks(e, 42)

	e.SwitchMode(ModeLongBreak)
	st := e.Snapshot()
	assert.Equal(t, ModeLongBreak, st.Mode)
	assert.Equal(t, 15*60, st.TimeRemaining)
	assert.True(t, st.Active, "switching mode does not pause")

	e.SwitchMode(ModeShortBreak)
	assert.Equal(t, 300, e.Snapshot().TimeRemaining)
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")
	e.SwitchMode(ModeShortBreak)
	ticks(e, 100)
	e.Pause()

	e.Reset()
	st := e.Snapshot()
	assert.Equal(t, ModeShortBreak, st.Mode)
	assert.Equal(t, 300, st.TimeRemaining)
	assert.False(t, st.Active, "reset keeps the activity flag")
}

func TestStopAppendsHistory(t *testing.T) {
	e, s := newTestEngine(t)
	e.Start("task-9")
	runWork(e)     // 25 min work
	ticks(e, 5*60) // 5 min short break
	e.Tick()       // back to work
	ticks(e, 60)   // 1 min work

	require.NoError(t, e.Stop())

	st := e.Snapshot()
	assert.False(t, st.Active)
	assert.Nil(t, st.CurrentSession)
	assert.Equal(t, 0, st.CompletedPomodoros)

	history := e.Sessions()
	require.Len(t, history, 1)
	got := history[0]
	assert.Equal(t, "task-9", got.TaskID)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, got.CompletedPomodoros)
	assert.Equal(t, 26, got.TotalWorkTime)
	assert.Equal(t, 5, got.TotalBreakTime)
	assert.True(t, got.EndTime.After(got.StartTime))

	var stored []Session
	require.NoError(t, s.GetJSON(store.KeyPomodoroSessions, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, got.ID, stored[0].ID)
}

func TestStopWithoutSessionIsNoop(t *testing.T) {
	e, s := newTestEngine(t)
	require.NoError(t, e.Stop())
	assert.Empty(t, e.Sessions())

	_, err := s.Get(store.KeyPomodoroSessions)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// A second stop after a real one also appends nothing.
	e.Start("")
	require.NoError(t, e.Stop())
	require.NoError(t, e.Stop())
	assert.Len(t, e.Sessions(), 1)
}

func TestStopPersistFailureKeepsHistory(t *testing.T) {
	e := NewEngine(failingDocs{}, nil)
	e.Start("")
	err := e.Stop()
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "Failed to save pomodoro session", e.Err())
	assert.Len(t, e.Sessions(), 1)
	assert.Nil(t, e.Snapshot().CurrentSession)
}

// ============================================================
// Settings
// ============================================================

func TestUpdateSettingsWhileIdleResetsCountdown(t *testing.T) {
	e, s := newTestEngine(t)
	e.SwitchMode(ModeShortBreak)

	ten := 10
	require.NoError(t, e.UpdateSettings(SettingsPatch{ShortBreakDuration: &ten}))
	assert.Equal(t, 600, e.Snapshot().TimeRemaining)
	assert.Equal(t, 10, e.Settings().ShortBreakDuration)
	assert.Equal(t, 25, e.Settings().WorkDuration)

	var stored Settings
	require.NoError(t, s.GetJSON(store.KeyPomodoroSettings, &stored))
	assert.Equal(t, e.Settings(), stored)
}

func TestUpdateSettingsWhileActiveKeepsCountdown(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start("")
	ticks(e, 30)

	fifty := 50
	require.NoError(t, e.UpdateSettings(SettingsPatch{WorkDuration: &fifty}))
	assert.Equal(t, 1470, e.Snapshot().TimeRemaining)

	e.Reset()
	assert.Equal(t, 3000, e.Snapshot().TimeRemaining)
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	e, _ := newTestEngine(t)
	zero := 0
	err := e.UpdateSettings(SettingsPatch{SessionsBeforeLongBreak: &zero})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, 4, e.Settings().SessionsBeforeLongBreak)

	neg := -5
	err = e.UpdateSettings(SettingsPatch{WorkDuration: &neg})
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestLoadSettings(t *testing.T) {
	e, s := newTestEngine(t)
	require.NoError(t, s.SetJSON(store.KeyPomodoroSettings, Settings{
		WorkDuration: 50, ShortBreakDuration: 10, LongBreakDuration: 30, SessionsBeforeLongBreak: 3,
	}))

	require.NoError(t, e.LoadSettings())
	assert.Equal(t, 50, e.Settings().WorkDuration)
	assert.Equal(t, 3000, e.Snapshot().TimeRemaining)
}

func TestLoadSettingsFallsBackToDefaults(t *testing.T) {
	e, s := newTestEngine(t)
	require.NoError(t, e.LoadSettings(), "missing document is not an error")
	assert.Equal(t, DefaultSettings(), e.Settings())

	require.NoError(t, s.Set(store.KeyPomodoroSettings, "garbage"))
	assert.ErrorIs(t, e.LoadSettings(), ErrPersistence)
	assert.Equal(t, DefaultSettings(), e.Settings())

	require.NoError(t, s.SetJSON(store.KeyPomodoroSettings, Settings{WorkDuration: 25}))
	assert.ErrorIs(t, e.LoadSettings(), ErrInvalidSettings)
	assert.Equal(t, DefaultSettings(), e.Settings())
}

func TestLoadSessions(t *testing.T) {
	e, s := newTestEngine(t)
	e.Start("")
	require.NoError(t, e.Stop())

	fresh := NewEngine(s, nil)
	require.NoError(t, fresh.LoadSessions())
	assert.Len(t, fresh.Sessions(), 1)
}

func TestSessionJSONShape(t *testing.T) {
	e, s := newTestEngine(t)
	e.Start("")
	require.NoError(t, e.Stop())

	raw, err := s.Get(store.KeyPomodoroSessions)
	require.NoError(t, err)
	for _, f := range []string{`"id"`, `"startTime"`, `"endTime"`, `"completed":true`, `"totalWorkTime"`, `"totalBreakTime"`, `"completedPomodoros"`} {
		assert.Contains(t, raw, f)
	}
	assert.NotContains(t, raw, `"taskId"`)
}

func TestModeHelpers(t *testing.T) {
	assert.Equal(t, "WORK", ModeWork.Label())
	assert.Equal(t, "SHORT BREAK", ModeShortBreak.Label())
	assert.Equal(t, "LONG BREAK", ModeLongBreak.Label())
	assert.False(t, ModeWork.IsBreak())
	assert.True(t, ModeLongBreak.IsBreak())

	s := DefaultSettings()
	assert.Equal(t, 1500, s.Seconds(ModeWork))
	assert.Equal(t, 300, s.Seconds(ModeShortBreak))
	assert.Equal(t, 900, s.Seconds(ModeLongBreak))
}
