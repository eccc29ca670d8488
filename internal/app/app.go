package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/llehouerou/sdjuke/internal/catalog"
	"github.com/llehouerou/sdjuke/internal/config"
	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/errmsg"
	"github.com/llehouerou/sdjuke/internal/mpris"
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/nvram"
	"github.com/llehouerou/sdjuke/internal/player"
	"github.com/llehouerou/sdjuke/internal/storage"
)

// Error ties a failure to the operation that failed.
type Error struct {
	Op  errmsg.Op
	Err error
}

func (e *Error) Error() string { return errmsg.Format(e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func opError(op errmsg.Op, err error) error {
	return &Error{Op: op, Err: err}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenDevice opens the configured NV backend. The returned closer releases it.
func OpenDevice(cfg *config.Config) (nvram.Device, io.Closer, error) {
	switch cfg.NVRAM.Backend {
	case config.NVRAMMemory:
		return nvram.NewMemory(cfg.NVRAM.Size), closerFunc(func() error { return nil }), nil
	case config.NVRAMSQLite:
		path, err := devicePath(cfg, "nvram.db")
		if err != nil {
			return nil, nil, opError(errmsg.OpOpenNVRAM, err)
		}
		dev, err := nvram.OpenSQLite(path, cfg.NVRAM.Size)
		if err != nil {
			return nil, nil, opError(errmsg.OpOpenNVRAM, err)
		}
		return dev, dev, nil
	default:
		path, err := devicePath(cfg, "nvram.bin")
		if err != nil {
			return nil, nil, opError(errmsg.OpOpenNVRAM, err)
		}
		dev, err := nvram.OpenFile(path, cfg.NVRAM.Size)
		if err != nil {
			return nil, nil, opError(errmsg.OpOpenNVRAM, err)
		}
		return dev, dev, nil
	}
}

func devicePath(cfg *config.Config, name string) (string, error) {
	if cfg.NVRAM.Path != "" {
		return cfg.NVRAM.Path, nil
	}
	return nvram.DefaultPath(name)
}

// OpenStore opens the NV backend and lays the catalog store over it.
func OpenStore(cfg *config.Config) (*catalog.Store, io.Closer, error) {
	dev, closer, err := OpenDevice(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := catalog.New(dev, cfg.Media.MaxTracks, cfg.Volume.Default)
	if err != nil {
		_ = closer.Close()
		return nil, nil, opError(errmsg.OpOpenNVRAM, err)
	}
	return store, closer, nil
}

// ResetState forgets the persisted playback state. Defaults apply on the
// next run.
func ResetState(cfg *config.Config) error {
	store, closer, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	return resetStore(store, closer)
}

func resetStore(store *catalog.Store, closer io.Closer) error {
	store.Reset()
	if err := closer.Close(); err != nil {
		return opError(errmsg.OpResetState, err)
	}
	return nil
}

// OpenMedia mounts the configured media directory.
func OpenMedia(cfg *config.Config) (*storage.FS, error) {
	fs, err := storage.MountOS(cfg.Media.Dir)
	if err != nil {
		return nil, opError(errmsg.OpMountMedia, err)
	}
	return fs, nil
}

// NewDecoder returns the configured audio backend.
func NewDecoder(cfg *config.Config) decoder.Decoder {
	if cfg.Decoder.Backend == config.DecoderNull {
		return decoder.NewNull(cfg.Decoder.NullRate)
	}
	return decoder.NewSpeaker()
}

// NewSink returns the host event sink: JSON lines on stdout and, when
// enabled and available, desktop notifications.
func NewSink(cfg *config.Config, stdout io.Writer) notify.Sink {
	var sinks notify.Multi
	if cfg.Notify.Stdout && stdout != nil {
		sinks = append(sinks, notify.NewWriter(stdout))
	}
	if cfg.Notify.Desktop {
		d, err := notify.NewDesktop()
		if err != nil {
			slog.Default().With("component", "app").
				Warn("desktop notifications unavailable", "error", err)
		} else {
			sinks = append(sinks, d)
		}
	}
	if len(sinks) == 0 {
		return notify.Discard
	}
	return sinks
}

// PlayerOptions maps the configuration onto player options.
func PlayerOptions(cfg *config.Config) player.Options {
	return player.Options{
		ChunkSize:  cfg.Playback.ChunkSize,
		Repeat:     cfg.Playback.Repeat,
		Extensions: cfg.Media.Extensions,
		Volume: player.VolumeCurve{
			Base:     cfg.Volume.Base,
			Scale:    cfg.Volume.Scale,
			MaxLevel: cfg.Volume.MaxLevel,
		},
	}
}

// DecoderConfig maps the configuration onto decoder settings.
func DecoderConfig(cfg *config.Config) decoder.Config {
	return decoder.Config{
		SampleRate: cfg.Decoder.SampleRate,
		Buffer:     cfg.Decoder.Buffer,
	}
}

// App is a controller wired from configuration.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	Store  *catalog.Store
	Player *player.Player
	Loop   *Loop

	closers []io.Closer
}

// New opens the media and NV storage, builds the player and runs Setup.
func New(cfg *config.Config, stdout io.Writer) (*App, error) {
	media, err := OpenMedia(cfg)
	if err != nil {
		return nil, err
	}
	store, closer, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, store, media, NewDecoder(cfg), NewSink(cfg, stdout), closer)
}

func newApp(
	cfg *config.Config,
	store *catalog.Store,
	media storage.Volume,
	dec decoder.Decoder,
	sink notify.Sink,
	closers ...io.Closer,
) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     slog.Default().With("component", "app"),
		Store:   store,
		closers: closers,
	}
	a.Player = player.New(store, media, dec, sink, PlayerOptions(cfg))
	if err := a.Player.Setup(DecoderConfig(cfg)); err != nil {
		_ = a.Close()
		if errors.Is(err, player.ErrBeginDecoder) {
			return nil, opError(errmsg.OpBeginDecoder, err)
		}
		return nil, opError(errmsg.OpSetup, err)
	}
	a.Loop = NewLoop(a.Player, cfg.Playback.IdleTick)
	return a, nil
}

// Run drives the player until ctx is done. Host commands are read from
// stdin when it is not nil. The media watcher and MPRIS run when enabled;
// failing to start either is logged, not fatal.
func (a *App) Run(ctx context.Context, stdin io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.MPRIS.Enabled {
		adapter, err := mpris.New(a.Loop, a.cfg.Media.Dir)
		if err != nil {
			a.log.Warn(errmsg.Format(errmsg.OpMPRIS, err))
		} else {
			defer func() { _ = adapter.Close() }()
		}
	}

	var wg sync.WaitGroup
	if a.cfg.Media.Watch {
		wg.Go(func() {
			if err := Watch(ctx, a.cfg.Media.Dir, a.cfg.Media.Extensions, a.cfg.Media.WatchDelay, a.Loop); err != nil {
				a.log.Warn(errmsg.Format(errmsg.OpWatchMedia, err))
			}
		})
	}

	// The reader may stay blocked on stdin after shutdown; it is not waited for.
	if stdin != nil {
		go func() {
			if err := ReadCommands(ctx, stdin, a.Loop); err != nil {
				a.log.Warn("host input", "error", err)
				return
			}
			a.log.Debug("host input closed")
		}()
	}

	a.log.Info("running", "dir", a.cfg.Media.Dir, "tracks", a.Loop.Status().NumTracks)
	err := a.Loop.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close ends the open track and releases the storage backends.
func (a *App) Close() error {
	if a.Player != nil {
		a.Player.Close()
	}
	var errs []error
	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
