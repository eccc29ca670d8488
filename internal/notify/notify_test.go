package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestFrame_MarshalKeepsFieldOrder(t *testing.T) {
	f := Command(CmdConnected,
		KV("volume", 62),
		KV("title", "Song"),
		KV("state", "PLAYING"),
	)

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"command":"CONNECTED","volume":62,"title":"Song","state":"PLAYING"}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}

func TestFrame_MarshalNested(t *testing.T) {
	f := Command(CmdLibrary, KV("songs", []Frame{
		{KV("title", "A"), KV("songNumber", 0)},
		{KV("title", "B"), KV("songNumber", 1)},
	}))

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"command":"LIBRARY","songs":[{"title":"A","songNumber":0},{"title":"B","songNumber":1}]}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}

func TestFrame_MarshalEscapes(t *testing.T) {
	b, err := json.Marshal(Frame{KV("title", `say "hi"`)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `{"title":"say \"hi\""}`; string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}

func TestFrame_EmptyMarshalsToEmptyObject(t *testing.T) {
	b, err := json.Marshal(Frame{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("Marshal = %s, want {}", b)
	}
}

func TestFrame_GetAndCommand(t *testing.T) {
	f := Command(CmdSeek, KV("position", 25))

	if got := f.Command(); got != CmdSeek {
		t.Errorf("Command() = %q, want %q", got, CmdSeek)
	}
	v, ok := f.Get("position")
	if !ok || v != 25 {
		t.Errorf("Get(position) = (%v, %v), want (25, true)", v, ok)
	}
	if _, ok := f.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if got := Message("Next Song").Command(); got != "" {
		t.Errorf("message frame Command() = %q, want empty", got)
	}
}

func TestWriter_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Send(Message("Next Song")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := w.Send(Command(CmdSeek, KV("position", 10))); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	want := "{\"message\":\"Next Song\"}\n{\"command\":\"SEEK\",\"position\":10}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestMulti_SendsToAllAndJoinsErrors(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	failure := errors.New("link down")
	b.SetError(failure)

	err := Multi{a, b}.Send(Message("x"))

	if !errors.Is(err, failure) {
		t.Errorf("Send() error = %v, want %v", err, failure)
	}
	if len(a.Frames()) != 1 || len(b.Frames()) != 1 {
		t.Errorf("frames = %d/%d, want 1/1", len(a.Frames()), len(b.Frames()))
	}
}

func TestRecorder_Filters(t *testing.T) {
	r := NewRecorder()
	_ = r.Send(Command(CmdSeek, KV("position", 1)))
	_ = r.Send(Message("Next Song"))
	_ = r.Send(Command(CmdSeek, KV("position", 2)))

	if got := len(r.Commands(CmdSeek)); got != 2 {
		t.Errorf("Commands(SEEK) = %d frames, want 2", got)
	}
	if got := r.Messages(); len(got) != 1 || got[0] != "Next Song" {
		t.Errorf("Messages() = %v, want [Next Song]", got)
	}

	r.Reset()
	if len(r.Frames()) != 0 {
		t.Error("Reset() should drop frames")
	}
}

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match D-Bus spec
	if UrgencyLow != 0 || UrgencyNormal != 1 || UrgencyCritical != 2 {
		t.Errorf("urgency values = %d/%d/%d, want 0/1/2", UrgencyLow, UrgencyNormal, UrgencyCritical)
	}
}

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	return uint32(len(f.sent)), nil
}

func TestDesktop_ShowsSongFrames(t *testing.T) {
	fake := &fakeNotifier{}
	d := &Desktop{n: fake}

	if err := d.Send(Command(CmdSeek, KV("position", 3))); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(fake.sent) != 0 {
		t.Fatalf("non-song frame produced %d notifications", len(fake.sent))
	}

	song := Command(CmdSong,
		KV("title", "Title"), KV("artist", "Artist"), KV("album", "Album"))
	if err := d.Send(song); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := d.Send(song); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(fake.sent) != 2 {
		t.Fatalf("notifications = %d, want 2", len(fake.sent))
	}
	first, second := fake.sent[0], fake.sent[1]
	if first.Title != "Title" || first.Body != "Artist - Album" {
		t.Errorf("notification = %+v", first)
	}
	if first.ReplacesID != 0 || second.ReplacesID != 1 {
		t.Errorf("ReplacesID = %d then %d, want 0 then 1", first.ReplacesID, second.ReplacesID)
	}
}

func TestDesktop_FallsBackToFilename(t *testing.T) {
	fake := &fakeNotifier{}
	d := &Desktop{n: fake}

	_ = d.Send(Command(CmdSong, KV("title", ""), KV("filename", "SONG1.MP3")))

	if len(fake.sent) != 1 || fake.sent[0].Title != "SONG1.MP3" || fake.sent[0].Body != "" {
		t.Errorf("notifications = %+v", fake.sent)
	}
}

func TestDesktop_WrapsErrors(t *testing.T) {
	failure := errors.New("no service")
	d := &Desktop{n: &fakeNotifier{err: failure}}

	err := d.Send(Command(CmdSong, KV("title", "x")))
	if !errors.Is(err, failure) {
		t.Errorf("Send() error = %v, want %v", err, failure)
	}
}
