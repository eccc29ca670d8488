package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/sdjuke/internal/app"
	"github.com/llehouerou/sdjuke/internal/config"
	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/errmsg"
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/player"
	"github.com/llehouerou/sdjuke/internal/stderr"
)

type options struct {
	configPath string
	mediaDir   string
	cfg        *config.Config
}

func main() {
	defer stderr.Stop()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stderr.Stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sdjuke",
		Short:         "Plays the MP3 and WAV files of a directory like an SD-card jukebox",
		Version:       appVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (TOML or YAML)")
	root.PersistentFlags().StringVarP(&opts.mediaDir, "dir", "d", "", "media directory, overrides media.dir")

	root.AddCommand(
		runCmd(opts),
		scanCmd(opts),
		stateCmd(opts),
		resetCmd(opts),
	)
	return root
}

// load reads the configuration and installs the logger. Logs go to the
// real stderr; output the audio backend writes to fd 2 is re-logged.
func (o *options) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return &app.Error{Op: errmsg.OpLoadConfig, Err: err}
	}
	if o.mediaDir != "" {
		cfg.Media.Dir = o.mediaDir
	}
	o.cfg = cfg

	var out io.Writer = os.Stderr
	if f, err := stderr.Start(); err == nil {
		out = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	stderr.Forward(slog.Default().With("component", "stderr"))
	return nil
}

func runCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Play the media directory, reading host commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts.cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()
	return a.Run(ctx, os.Stdin)
}

func scanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Rebuild the catalog and list the playable tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			songs, err := scan(opts.cfg)
			if err != nil {
				return err
			}
			return printSongs(cmd.OutOrStdout(), songs)
		},
	}
}

func scan(cfg *config.Config) ([]player.Song, error) {
	media, err := app.OpenMedia(cfg)
	if err != nil {
		return nil, err
	}
	store, closer, err := app.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	p := player.New(store, media, decoder.NewNull(0), notify.Discard, app.PlayerOptions(cfg))
	songs, err := p.Scan()
	if err != nil {
		return nil, &app.Error{Op: errmsg.OpScanCatalog, Err: err}
	}
	return songs, nil
}

func printSongs(w io.Writer, songs []player.Song) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tSIZE\tTITLE\tARTIST\tALBUM")
	for _, s := range songs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.Number, s.Filename, humanize.Bytes(uint64(max(s.Size, 0))), s.Title, s.Artist, s.Album)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d tracks\n", len(songs))
	return err
}

func stateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the persisted playback state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closer, err := app.OpenStore(opts.cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			w := cmd.OutOrStdout()
			if !store.Initialized() {
				_, err := fmt.Fprintln(w, "no saved state, defaults apply on next run")
				return err
			}
			st := store.Snapshot()
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "volume\t%d%%\n", st.Volume)
			fmt.Fprintf(tw, "track\t%d\n", st.Track)
			if st.Track < store.MaxTracks() {
				fmt.Fprintf(tw, "file\t%s\n", store.Entry(st.Track))
			}
			fmt.Fprintf(tw, "state\t%s\n", st.State)
			fmt.Fprintf(tw, "position\t%d%%\n", st.Position)
			return tw.Flush()
		},
	}
}

func resetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the persisted playback state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ResetState(opts.cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "playback state reset")
			return err
		},
	}
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
