package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// indicatorFPS is the frame rate of the busy indicator animation.
const indicatorFPS = time.Second / 14

// knightRiderFrames builds a KITT-style scanner: a bright dot bounces across
// a row of dots leaving a dimming trail. Colors come from the active theme.
func knightRiderFrames() []string {
	const numDots = 8
	const dot = "▪"

	theme := GetTheme()
	levels := []lipgloss.Style{
		lipgloss.NewStyle().Foreground(theme.Primary),
		lipgloss.NewStyle().Foreground(theme.Muted),
		lipgloss.NewStyle().Foreground(theme.VeryMuted),
	}
	off := lipgloss.NewStyle().Foreground(theme.MutedBorder)

	// 0→7→1, so the loop back to 0 does not repeat an end frame.
	positions := make([]int, 0, 2*numDots-2)
	for i := range numDots {
		positions = append(positions, i)
	}
	for i := numDots - 2; i > 0; i-- {
		positions = append(positions, i)
	}

	frames := make([]string, len(positions))
	for f, pos := range positions {
		var b strings.Builder
		for i := range numDots {
			d := max(pos-i, i-pos)
			if d < len(levels) {
				b.WriteString(levels[d].Render(dot))
			} else {
				b.WriteString(off.Render(dot))
			}
		}
		frames[f] = b.String()
	}
	return frames
}

// indicatorTickMsg advances the busy indicator by one frame. The id ties a
// tick to the run that scheduled it so that stopping and restarting quickly
// never leaves two tick loops alive.
type indicatorTickMsg struct {
	id int
}

// BusyIndicator is the animation shown while a submission is pending. It is
// driven entirely by tea.Tick messages on the Update loop.
type BusyIndicator struct {
	frames []string
	frame  int
	active bool
	id     int
}

// NewBusyIndicator creates a stopped indicator.
func NewBusyIndicator() *BusyIndicator {
	return &BusyIndicator{frames: knightRiderFrames()}
}

// Active reports whether the indicator is animating.
func (b *BusyIndicator) Active() bool {
	return b.active
}

// Start begins the animation. It returns nil when already running.
func (b *BusyIndicator) Start() tea.Cmd {
	if b.active {
		return nil
	}
	b.active = true
	b.frame = 0
	b.id++
	return b.tick()
}

// Stop halts the animation; pending ticks from the old run are ignored.
func (b *BusyIndicator) Stop() {
	b.active = false
}

// Update advances the frame on a tick from the current run and schedules
// the next one.
func (b *BusyIndicator) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(indicatorTickMsg)
	if !ok || !b.active || tick.id != b.id {
		return nil
	}
	b.frame = (b.frame + 1) % len(b.frames)
	return b.tick()
}

// View renders the current frame, or nothing when stopped.
func (b *BusyIndicator) View() string {
	if !b.active || len(b.frames) == 0 {
		return ""
	}
	return b.frames[b.frame]
}

func (b *BusyIndicator) tick() tea.Cmd {
	id := b.id
	return tea.Tick(indicatorFPS, func(time.Time) tea.Msg {
		return indicatorTickMsg{id: id}
	})
}
