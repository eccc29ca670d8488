package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/llehouerou/sdjuke/internal/errmsg"
	"github.com/llehouerou/sdjuke/internal/player"
)

// Command parse errors.
var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingArg     = errors.New("missing argument")
	ErrExtraArg       = errors.New("unexpected argument")
	ErrBadArg         = errors.New("invalid argument")
)

// Command is one parsed line of the host protocol.
type Command struct {
	Verb string
	Arg  int // 1/0 for repeat on/off
}

type verb struct {
	hasArg bool
	run    func(p player.Interface, arg int)
}

var verbs = map[string]verb{
	"play":   {run: func(p player.Interface, _ int) { p.Play() }},
	"pause":  {run: func(p player.Interface, _ int) { p.Pause() }},
	"toggle": {run: toggle},
	"next":   {run: func(p player.Interface, _ int) { p.NextFile() }},
	"prev":   {run: func(p player.Interface, _ int) { p.PrevFile() }},
	"seek":   {hasArg: true, run: func(p player.Interface, n int) { p.Seek(n) }},
	"volume": {hasArg: true, run: func(p player.Interface, n int) { p.SetVolume(n) }},
	"song":   {hasArg: true, run: func(p player.Interface, n int) { p.SetSong(n) }},
	"single": {hasArg: true, run: func(p player.Interface, n int) { p.PlaySingle(n) }},
	"repeat": {hasArg: true, run: func(p player.Interface, n int) { p.SetRepeat(n != 0) }},
	"status": {run: func(p player.Interface, _ int) { p.SendPlayerState() }},
}

func toggle(p player.Interface, _ int) {
	if p.IsPlaying() {
		p.Pause()
		return
	}
	p.Play()
}

// ParseCommand parses one protocol line, e.g. "seek 40" or "repeat off".
// Verbs are case-insensitive.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	name := strings.ToLower(fields[0])
	v, ok := verbs[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	args := fields[1:]
	if !v.hasArg {
		if len(args) > 0 {
			return Command{}, fmt.Errorf("%w: %s", ErrExtraArg, args[0])
		}
		return Command{Verb: name}, nil
	}
	switch {
	case len(args) == 0:
		return Command{}, fmt.Errorf("%w for %s", ErrMissingArg, name)
	case len(args) > 1:
		return Command{}, fmt.Errorf("%w: %s", ErrExtraArg, args[1])
	}

	arg, err := parseArg(name, args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: name, Arg: arg}, nil
}

func parseArg(name, s string) (int, error) {
	if name == "repeat" {
		switch strings.ToLower(s) {
		case "on":
			return 1, nil
		case "off":
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %q, want on or off", ErrBadArg, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrBadArg, s, err)
	}
	return n, nil
}

// Apply runs the command against p. Range checks are left to the player.
func (c Command) Apply(p player.Interface) {
	if v, ok := verbs[c.Verb]; ok {
		v.run(p, c.Arg)
	}
}

func (c Command) String() string {
	if !verbs[c.Verb].hasArg {
		return c.Verb
	}
	if c.Verb == "repeat" {
		if c.Arg != 0 {
			return "repeat on"
		}
		return "repeat off"
	}
	return c.Verb + " " + strconv.Itoa(c.Arg)
}

// Runner runs a request on the player loop.
type Runner interface {
	Do(fn func(player.Interface)) error
}

// ReadCommands reads protocol lines from r and runs each on l until r is
// exhausted, ctx is done or the loop stops. Blank lines and lines starting
// with '#' are ignored; malformed lines are logged and skipped.
func ReadCommands(ctx context.Context, r io.Reader, l Runner) error {
	log := slog.Default().With("component", "commands")

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			log.Warn(errmsg.FormatWith(errmsg.OpParseCommand, line, err))
			continue
		}
		log.Debug("command", "cmd", cmd.String())
		if err := l.Do(cmd.Apply); err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}
