package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"blogsearch/internal/config"
	"blogsearch/internal/kakao"
	"blogsearch/internal/logger"
	"blogsearch/internal/render"
	"blogsearch/internal/route"
	"blogsearch/internal/view"
)

func main() {
	app := &cli.App{
		Name:  "blogsearch",
		Usage: "interactive blog search shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{config.EnvConfigPath},
				Usage:   "path to blogsearch.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{config.EnvLogLevel},
				Value:   "warn",
				Usage:   "Set logging level",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	log := logger.New(c.String("log-level"), false, os.Stderr)

	client, err := kakao.New(cfg.Upstream, log)
	if err != nil {
		return err
	}
	rnd, err := render.New()
	if err != nil {
		return err
	}

	sh := newShell(os.Stdout, rnd)
	v := view.New(client, view.WithLogger(log), view.OnChange(sh.show))
	defer v.Close()

	// one-shot mode: blogsearch <keyword...>
	if c.NArg() > 0 {
		return searchOnce(c.Context, v, strings.Join(c.Args().Slice(), " "))
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.CLI.HistoryFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.CLI.HistoryFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(os.Stdout, "Blog search shell. Empty line clears, :q quits.")

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		input, err := line.Prompt("blog> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == ":q" || input == "exit" || input == "quit" {
			return nil
		}
		if input != "" {
			line.AppendHistory(input)
		}

		v.SetText(input)
		keyword, _ := route.KeywordFromPath(v.Submit())

		// a newer line supersedes a search still running
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = v.Navigate(c.Context, keyword)
		}()
	}
}

// searchOnce submits text and waits for its search, so a failed search
// makes the process exit non-zero.
func searchOnce(ctx context.Context, v *view.SearchView, text string) error {
	v.SetText(text)
	keyword, _ := route.KeywordFromPath(v.Submit())
	if err := v.Navigate(ctx, keyword); err != nil && !errors.Is(err, view.ErrSuperseded) {
		return fmt.Errorf("search %q: %w", keyword, err)
	}
	return nil
}

// shell prints view state changes; a spinner runs while a search is loading.
type shell struct {
	out io.Writer
	rnd *render.Renderer

	mu      sync.Mutex
	spinner *progressbar.ProgressBar
	stop    chan struct{}
}

func newShell(out io.Writer, rnd *render.Renderer) *shell {
	return &shell{out: out, rnd: rnd}
}

func (s *shell) show(st view.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st.Status {
	case view.StatusLoading:
		s.startSpinner(st.Keyword)
		return
	case view.StatusIdle:
		s.stopSpinner()
		return
	}
	s.stopSpinner()

	switch {
	case st.Status == view.StatusFailed:
		fmt.Fprintf(s.out, "\n⚠ search for %q failed: %v\n", st.Keyword, st.Err)
	case st.Empty():
		fmt.Fprintf(s.out, "\nNo results for %q.\n", st.Keyword)
	default:
		fmt.Fprintf(s.out, "\n%d of %d results for %q\n\n", len(st.Results), st.Meta.TotalCount, st.Keyword)
		for i, it := range st.Results {
			fmt.Fprintln(s.out, s.rnd.PlainText(i+1, it))
		}
	}
}

func (s *shell) startSpinner(keyword string) {
	s.stopSpinner()
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("searching "+keyword),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	stop := make(chan struct{})
	s.spinner, s.stop = bar, stop

	go func() {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				_ = bar.Add(1)
			}
		}
	}()
}

func (s *shell) stopSpinner() {
	if s.spinner == nil {
		return
	}
	close(s.stop)
	_ = s.spinner.Finish()
	s.spinner, s.stop = nil, nil
}
