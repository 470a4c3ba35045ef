package pomodoro

import (
	"errors"
	"fmt"
)

type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

var modeLabels = map[Mode]string{
	ModeWork:       "WORK",
	ModeShortBreak: "SHORT BREAK",
	ModeLongBreak:  "LONG BREAK",
}

func (m Mode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

func (m Mode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

var ErrInvalidSettings = errors.New("invalid pomodoro settings")

// Settings holds durations in minutes.
type Settings struct {
	WorkDuration            int `json:"workDuration"`
	ShortBreakDuration      int `json:"shortBreakDuration"`
	LongBreakDuration       int `json:"longBreakDuration"`
	SessionsBeforeLongBreak int `json:"sessionsBeforeLongBreak"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:            25,
		ShortBreakDuration:      5,
		LongBreakDuration:       15,
		SessionsBeforeLongBreak: 4,
	}
}

// Minutes returns the configured length of mode.
func (s Settings) Minutes(m Mode) int {
	switch m {
	case ModeShortBreak:
		return s.ShortBreakDuration
	case ModeLongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// Seconds returns the countdown length of mode.
func (s Settings) Seconds(m Mode) int {
	return s.Minutes(m) * 60
}

func (s Settings) Validate() error {
	switch {
	case s.WorkDuration < 1:
		return fmt.Errorf("%w: work duration must be at least 1 minute", ErrInvalidSettings)
	case s.ShortBreakDuration < 1:
		return fmt.Errorf("%w: short break must be at least 1 minute", ErrInvalidSettings)
	case s.LongBreakDuration < 1:
		return fmt.Errorf("%w: long break must be at least 1 minute", ErrInvalidSettings)
	case s.SessionsBeforeLongBreak < 1:
		return fmt.Errorf("%w: sessions before long break must be at least 1", ErrInvalidSettings)
	}
	return nil
}

// SettingsPatch is a partial update; nil fields keep their value.
type SettingsPatch struct {
	WorkDuration            *int
	ShortBreakDuration      *int
	LongBreakDuration       *int
	SessionsBeforeLongBreak *int
}

func (s Settings) apply(p SettingsPatch) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.ShortBreakDuration != nil {
		s.ShortBreakDuration = *p.ShortBreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.SessionsBeforeLongBreak != nil {
		s.SessionsBeforeLongBreak = *p.SessionsBeforeLongBreak
	}
	return s
}
