package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"chessgif/internal/bridge"
	"chessgif/internal/colors"
	"chessgif/internal/config"
	"chessgif/internal/ingest"
	"chessgif/internal/uistate"
	"chessgif/internal/worker"
)

const stdoutTarget = "-"

type renderOptions struct {
	pgn   string
	theme string
	dark  string
	light string
	out   string
	watch bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [FILE|GLOB...]",
		Short: "Render PGN files or inline notation to GIF",
		Long: "Render PGN files, doublestar glob patterns (e.g. games/**/*.pgn) or inline\n" +
			"notation. Files are written next to their input as NAME.gif unless --out\n" +
			"names a file or directory; inline notation is written to stdout by default.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, ctx, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.pgn, "pgn", "", "Inline notation to render instead of files")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "Board theme (see `chessgif themes`)")
	cmd.Flags().StringVar(&opts.dark, "dark", "", "Dark square color (#rgb or #rrggbb)")
	cmd.Flags().StringVar(&opts.light, "light", "", "Light square color (#rgb or #rrggbb)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file or directory, - for stdout")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-render the file whenever it changes")
	return cmd
}

func runRender(cmd *cobra.Command, ctx *commandContext, args []string, opts renderOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	dark, light, err := resolveColors(cfg, opts)
	if err != nil {
		return err
	}
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	switch {
	case opts.pgn == "" && len(inputs) == 0:
		return errors.New("nothing to render: pass files, glob patterns or --pgn")
	case opts.pgn != "" && len(inputs) > 0:
		return errors.New("--pgn cannot be combined with input files")
	case opts.watch && (len(inputs) != 1 || opts.out == "" || opts.out == stdoutTarget):
		return errors.New("--watch needs exactly one input file and an --out file")
	case len(inputs) > 1 && opts.out == stdoutTarget:
		return errors.New("cannot write several GIFs to stdout")
	}

	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	var recorder worker.Recorder
	if store != nil {
		defer store.Close()
		recorder = store
	}
	session, err := ctx.newWorker(recorder)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := session.Start(runCtx); err != nil {
		return err
	}
	defer session.Stop()

	r := newRenderer(session, logger, cfg, dark, light)
	defer r.close()

	if opts.pgn != "" {
		target := opts.out
		if target == "" {
			target = stdoutTarget
		}
		r.mirror.ReplaceNotation(opts.pgn)
		data, err := r.convert(runCtx)
		if err != nil {
			return err
		}
		return writeOutput(cmd, target, data)
	}

	if opts.watch {
		return r.watch(runCtx, cmd, inputs[0], opts.out, cfg)
	}

	failures := 0
	for _, input := range inputs {
		target := outputPath(input, opts.out, len(inputs))
		if err := r.renderFile(runCtx, cmd, input, target); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", input, err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d conversions failed", failures, len(inputs))
	}
	return nil
}

// renderer is one interactive surface driven from the command line.
type renderer struct {
	mirror   *uistate.Mirror
	bridge   *bridge.Bridge
	ingestor *ingest.Ingestor
	logger   *slog.Logger
	replies  chan worker.Reply
}

func newRenderer(session *worker.Session, logger *slog.Logger, cfg *config.Config, dark, light string) *renderer {
	pair, _ := colors.DefaultTheme().Pair()
	mirror := uistate.NewMirror(pair)
	mirror.Bind(&uistate.TextBuffer{})
	mirror.SetColors(dark, light)

	r := &renderer{
		mirror:  mirror,
		logger:  logger,
		replies: make(chan worker.Reply, 1),
	}
	r.bridge = bridge.New(session, mirror, logger, bridge.WithObserver(func(reply worker.Reply) {
		r.replies <- reply
	}))
	r.ingestor = ingest.New(mirror, logger, ingest.WithMaxBytes(cfg.Ingest.MaxBytes))
	return r
}

func (r *renderer) close() {
	r.bridge.Close()
	r.ingestor.Wait()
}

func (r *renderer) load(ctx context.Context, path string) error {
	outcome := <-r.ingestor.Select(ctx, ingest.PathFile(path))
	return outcome.Err
}

// convert sends the mirror's current state and waits for the published reply.
func (r *renderer) convert(ctx context.Context) ([]byte, error) {
	if err := r.bridge.SendCurrent(); err != nil {
		return nil, err
	}
	select {
	case reply := <-r.replies:
		if !reply.Response.IsSuccess() {
			return nil, reply.Response.Err()
		}
		return r.mirror.Image.Get().Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *renderer) renderFile(ctx context.Context, cmd *cobra.Command, input, target string) error {
	if err := r.load(ctx, input); err != nil {
		return err
	}
	data, err := r.convert(ctx)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, target, data); err != nil {
		return err
	}
	if target != stdoutTarget {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
	}
	return nil
}

func (r *renderer) watch(ctx context.Context, cmd *cobra.Command, input, target string, cfg *config.Config) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s; writing %s (Ctrl+C to stop)\n", input, target)
	watcher := ingest.NewWatcher(r.ingestor, r.logger, cfg.WatchDebounce())
	return watcher.Watch(ctx, input, func(outcome ingest.Outcome) {
		if outcome.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", input, outcome.Err)
			return
		}
		data, err := r.convert(ctx)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", input, err)
			}
			return
		}
		if err := writeOutput(cmd, target, data); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", target, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
	})
}

func resolveColors(cfg *config.Config, opts renderOptions) (string, string, error) {
	if strings.TrimSpace(opts.theme) != "" {
		if opts.dark != "" || opts.light != "" {
			return "", "", errors.New("--theme cannot be combined with --dark or --light")
		}
		theme, err := colors.LookupTheme(opts.theme)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s", err, opts.theme)
		}
		return theme.Dark, theme.Light, nil
	}
	dark, light := cfg.BoardColors()
	if opts.dark != "" {
		dark = opts.dark
	}
	if opts.light != "" {
		light = opts.light
	}
	return dark, light, nil
}

// expandInputs resolves glob patterns and keeps literal paths in order.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		inputs = append(inputs, path)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid glob pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		slices.Sort(matches)
		for _, match := range matches {
			add(match)
		}
	}
	return inputs, nil
}

// outputPath picks where the GIF for input goes. Several inputs, an existing
// directory or a trailing separator make out a directory.
func outputPath(input, out string, inputs int) string {
	gifName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".gif"
	if out == "" {
		return filepath.Join(filepath.Dir(input), gifName)
	}
	if out == stdoutTarget {
		return out
	}
	if inputs > 1 || strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, gifName)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, gifName)
	}
	return out
}

func writeOutput(cmd *cobra.Command, target string, data []byte) error {
	if target == stdoutTarget {
		w := cmd.OutOrStdout()
		if isTerminal(w) {
			return errors.New("refusing to write GIF data to a terminal; use --out or redirect stdout")
		}
		_, err := w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
