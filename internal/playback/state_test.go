// internal/playback/state_test.go
package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{DirPlay, "DirPlay"},
		{SinglePlay, "SinglePlay"},
		{Idle, "Idle"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsPlaying(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{DirPlay, true},
		{SinglePlay, true},
		{Idle, false},
		{State(7), false},
	}
	for _, tt := range tests {
		if got := tt.state.IsPlaying(); got != tt.want {
			t.Errorf("%v.IsPlaying() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestState_Status(t *testing.T) {
	if got := DirPlay.Status(); got != "PLAYING" {
		t.Errorf("DirPlay.Status() = %q, want PLAYING", got)
	}
	if got := Idle.Status(); got != "PAUSED" {
		t.Errorf("Idle.Status() = %q, want PAUSED", got)
	}
}

func TestState_Pause(t *testing.T) {
	tests := []struct {
		state      State
		wantNext   State
		wantRemem  State
		wantEffect bool
	}{
		{DirPlay, Idle, DirPlay, true},
		{SinglePlay, Idle, SinglePlay, true},
		{Idle, Idle, Idle, false},
	}
	for _, tt := range tests {
		next, remembered, ok := tt.state.Pause()
		if next != tt.wantNext || remembered != tt.wantRemem || ok != tt.wantEffect {
			t.Errorf("%v.Pause() = (%v, %v, %v), want (%v, %v, %v)",
				tt.state, next, remembered, ok, tt.wantNext, tt.wantRemem, tt.wantEffect)
		}
	}
}

func TestState_Resume(t *testing.T) {
	tests := []struct {
		name       string
		state      State
		remembered State
		want       State
		wantOK     bool
	}{
		{"idle back to dir play", Idle, DirPlay, DirPlay, true},
		{"idle back to single play", Idle, SinglePlay, SinglePlay, true},
		{"idle remembered idle defaults to dir play", Idle, Idle, DirPlay, true},
		{"corrupt remembered state defaults to dir play", Idle, State(42), DirPlay, true},
		{"already playing is a no-op", DirPlay, SinglePlay, DirPlay, false},
		{"single play is a no-op", SinglePlay, DirPlay, SinglePlay, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.state.Resume(tt.remembered)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resume() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPauseResume_RestoresState(t *testing.T) {
	for _, s := range []State{DirPlay, SinglePlay, Idle} {
		paused, remembered, _ := s.Pause()
		resumed, _ := paused.Resume(remembered)
		want := s
		if s == Idle {
			want = DirPlay
		}
		if resumed != want {
			t.Errorf("pause+resume from %v = %v, want %v", s, resumed, want)
		}
	}
}

func TestRepeatMode_String(t *testing.T) {
	tests := []struct {
		mode RepeatMode
		want string
	}{
		{RepeatOff, "Off"},
		{RepeatAll, "All"},
		{RepeatMode(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestRepeatMode_NextIndex(t *testing.T) {
	tests := []struct {
		name    string
		mode    RepeatMode
		current int
		n       int
		want    int
		wantOK  bool
	}{
		{"middle advances", RepeatOff, 1, 3, 2, true},
		{"last without repeat stops", RepeatOff, 2, 3, 2, false},
		{"last with repeat wraps", RepeatAll, 2, 3, 0, true},
		{"single track with repeat wraps to itself", RepeatAll, 0, 1, 0, true},
		{"empty catalog", RepeatAll, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.mode.NextIndex(tt.current, tt.n)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextIndex(%d, %d) = (%d, %v), want (%d, %v)",
					tt.current, tt.n, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
