package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/cli"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/config"
	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/Veraticus/sakhi/internal/session"
	"github.com/Veraticus/sakhi/internal/transcript"
	"github.com/Veraticus/sakhi/internal/tui"
	"github.com/Veraticus/sakhi/internal/tui/themes"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"
)

// app bundles what every backend command needs.
type app struct {
	cfg     *config.Config
	client  *backend.Client
	log     *chatLog
	loc     *i18n.Localizer
	out     io.Writer
	autoYes bool
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

func tokenSource(cfg *config.Config) session.TokenSource {
	if cfg.TokenFile != "" {
		return session.FileToken{Path: cfg.TokenFile}
	}
	return session.EnvToken{}
}

// newApp loads config, connects the backend client and opens the transcript.
// The caller must call close.
func newApp(ctx context.Context, out io.Writer, autoYes bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireBackend(); err != nil {
		return nil, err
	}

	tokens := tokenSource(cfg)
	client, err := backend.NewClient(cfg.Backend(), tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	store, err := openTranscript(ctx, cfg)
	if err != nil {
		return nil, err
	}

	token, err := tokens.Token(ctx)
	if err != nil {
		slog.Warn("Could not read access token", "error", err)
	}

	common.LogDebug("Backend client ready", common.Fields{
		"base_url": cfg.BaseURL,
		"strategy": cfg.Strategy,
		"language": cfg.Language,
	})

	return &app{
		cfg:     cfg,
		client:  client,
		log:     newChatLog(store, session.Subject(token)),
		loc:     i18n.New(cfg.Language),
		out:     out,
		autoYes: autoYes,
	}, nil
}

func (a *app) close() {
	a.log.close()
}

func openTranscript(ctx context.Context, cfg *config.Config) (*transcript.Store, error) {
	if !cfg.TranscriptEnabled {
		return nil, nil
	}

	store, err := transcript.Open(cfg.TranscriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close transcript", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to migrate transcript: %w", err)
	}
	return store, nil
}

// newCommitter builds the committer for the configured strategy.
func (a *app) newCommitter() reconcile.Committer {
	if a.cfg.Strategy != config.StrategyLedger {
		return reconcile.NewBatchCommitter(a.client)
	}

	ledger := reconcile.NewLedgerCommitter(a.client, a.cfg.Language)
	ledger.Concurrency = a.cfg.Concurrency
	if a.autoYes {
		ledger.OnProgress = newProgress(a.out)
	}
	return ledger
}

// newProgress returns an OnProgress callback drawing a progress bar once
// the total is known.
func newProgress(w io.Writer) func(done, total int) {
	var (
		bar *progressbar.ProgressBar
		mu  sync.Mutex
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Saving items...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					if _, err := fmt.Fprintln(w); err != nil {
						slog.Warn("Failed to write progress completion", "error", err)
					}
				}),
			)
		}
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// clarify opens the clarification table for ext and drives it to a
// terminal state, interactively or, with --yes, by committing at once.
func (a *app) clarify(ctx context.Context, ext model.Extraction) error {
	sessionID := uuid.NewString()
	record := func(text string) {
		a.log.record(ctx, transcript.Entry{
			SessionID: sessionID,
			Role:      transcript.RoleSystem,
			Kind:      transcript.KindClarification,
			Text:      text,
		})
	}

	var notifier reconcile.Notifier
	var notices *tui.Notices
	if a.autoYes {
		notifier = cli.NewNotifier(a.out, a.loc)
	} else {
		notices = tui.NewNotices(nil)
		notifier = notices
	}

	s := reconcile.NewSession(a.newCommitter(),
		reconcile.WithNotifier(notifier),
		reconcile.WithTableOptions(reconcile.WithQuantityPolicy(a.cfg.QuantityPolicy)),
		reconcile.WithOnConfirm(func(results []model.CommitResult) {
			record(fmt.Sprintf("%s: %d saved", transcript.TextProcessed, len(results)))
		}),
		reconcile.WithOnCancel(func() {
			record(transcript.TextCancelled)
		}),
	)

	if err := s.Open(ext.Items); err != nil {
		return err
	}
	common.LogInfo("Clarification opened", common.Fields{
		"session_id": sessionID,
		"items":      len(ext.Items),
		"merchant":   ext.Merchant,
	})

	if a.autoYes {
		report, err := s.Commit(ctx)
		if err != nil {
			return common.NewUserError("nothing was saved: no row has a name and an amount", err)
		}
		fmt.Fprint(a.out, cli.FormatFailures(report))
		return nil
	}

	result, err := tui.Run(ctx, s, notices,
		tui.WithLanguage(a.cfg.Language),
		tui.WithTitle(ext.Merchant),
		tui.WithTheme(themes.ByName(a.cfg.Theme)),
		tui.WithIO(os.Stdin, a.out),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if !result.Cancelled {
		fmt.Fprint(a.out, cli.FormatFailures(result.Report))
	}
	return nil
}

// chatLog writes transcript entries for one user. A nil store drops them.
type chatLog struct {
	store  *transcript.Store
	userID string
}

func newChatLog(store *transcript.Store, userID string) *chatLog {
	return &chatLog{store: store, userID: userID}
}

func (l *chatLog) record(ctx context.Context, e transcript.Entry) {
	if l.store == nil {
		return
	}
	e.UserID = l.userID
	if _, err := l.store.Append(context.WithoutCancel(ctx), e); err != nil {
		slog.Warn("Failed to write transcript", "error", err, "kind", e.Kind)
	}
}

func (l *chatLog) close() {
	if l.store == nil {
		return
	}
	if err := l.store.Close(); err != nil {
		slog.Error("Failed to close transcript", "error", err)
	}
}
