package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/application"
	appanalysis "github.com/bryanwahyu/chat-pattern-explorer/internal/application/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/application/workspace"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/config"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/domain/ai"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/domain/chatfile"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/ai/openai"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/backend"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/logging"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/middleware"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/render"
)

const failureMessage = "Something went wrong on our side"

// App carries the CLI settings and the collaborators each command builds on.
type App struct {
	ConfigPath string
	Driver     string
	Verbose    bool

	Out io.Writer

	// Client and Store replace the configured ones when set.
	Client ai.Client
	Store  domain.ResultStore
}

func NewApp() *App {
	return &App{ConfigPath: "config.yaml", Out: os.Stdout}
}

func (app *App) RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "insights",
		Short: "Analyze WhatsApp chat exports",
		Long: `insights sends an exported WhatsApp chat (.txt) to the configured completion
endpoint and shows the categorized analysis. Saved results are shared with the API server.`,
		SilenceUsage: true,
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		app.ConfigPath = v
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&app.Driver, "storage", "", "Storage driver override (file, memory, redis, minio, mysql, postgres)")
	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log to stderr")

	app.addAnalyzeCommand(rootCmd)
	app.addSavedCommands(rootCmd)
	return rootCmd
}

func (app *App) addAnalyzeCommand(rootCmd *cobra.Command) {
	var (
		save bool
		name string
	)
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a chat export",
		Long: `Analyze a WhatsApp chat export and print the result panels.
Only plain text files are accepted. With --save the result is added to the saved list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAnalyze(cmd.Context(), args[0], save, name)
		},
	}
	analyzeCmd.Flags().BoolVar(&save, "save", false, "Save the result")
	analyzeCmd.Flags().StringVar(&name, "name", "", "Name for the saved entry (defaults to the file name)")
	rootCmd.AddCommand(analyzeCmd)
}

func (app *App) addSavedCommands(rootCmd *cobra.Command) {
	savedCmd := &cobra.Command{
		Use:   "saved",
		Short: "List saved chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runSaved(cmd.Context())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <index|id>",
		Short: "Show a saved result",
		Long:  `Show a saved result, picked by its position in "insights saved" or by its id.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runShow(cmd.Context(), args[0])
		},
	}

	rootCmd.AddCommand(savedCmd, showCmd)
}

// session is what one command invocation works against.
type session struct {
	ws      *workspace.Workspace
	client  ai.Client
	log     *zap.Logger
	cleanup func()
}

func (app *App) open(ctx context.Context) (*session, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if app.Driver != "" {
		cfg.Storage.Driver = app.Driver
	}

	logger := zap.NewNop()
	if app.Verbose {
		if logger, err = logging.New(cfg.Log.Level, "console"); err != nil {
			return nil, err
		}
	}

	s := &session{client: app.Client, log: logger, cleanup: func() { _ = logger.Sync() }}

	store := app.Store
	if store == nil {
		be, err := backend.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		store = be.Store
		s.cleanup = func() {
			if err := be.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
			_ = logger.Sync()
		}
	}
	if s.client == nil {
		s.client = openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, nil)
	}

	s.ws = workspace.New(store, application.SystemClock{}, logger)
	if err := s.ws.Load(ctx); err != nil {
		s.cleanup()
		return nil, err
	}
	return s, nil
}

func (app *App) runAnalyze(ctx context.Context, path string, save bool, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	base := middleware.SanitizeFileName(filepath.Base(path))
	chat, err := chatfile.Validate(base, chatfile.TypeByName(path), data)
	if err != nil {
		return err
	}

	s, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer s.cleanup()

	r := render.New()
	res, err := appanalysis.NewService(s.client, s.log).Analyze(ctx, chat.Content)
	if err != nil {
		fmt.Fprintln(app.Out, failureMessage)
		fmt.Fprint(app.Out, r.Panels(domain.Result{}))
		return err
	}
	if err := s.ws.SetAnalyzed(chat.Name, res); err != nil {
		return err
	}
	fmt.Fprint(app.Out, r.Panels(res))

	if !save {
		return nil
	}
	entry, err := s.ws.SavePending(ctx, middleware.SanitizeFileName(name))
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Saved %q (%s)\n", entry.Name, entry.ID)
	return nil
}

func (app *App) runSaved(ctx context.Context) error {
	s, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer s.cleanup()

	entries, err := s.ws.Saved()
	if err != nil {
		return err
	}
	fmt.Fprint(app.Out, render.New().SavedList(entries))
	return nil
}

func (app *App) runShow(ctx context.Context, ref string) error {
	s, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer s.cleanup()

	var entry domain.SavedEntry
	if _, perr := uuid.Parse(ref); perr == nil {
		entry, err = s.ws.SelectID(domain.EntryID(ref))
	} else {
		i, ierr := middleware.ParseIndex(ref)
		if ierr != nil {
			return ierr
		}
		entry, err = s.ws.Select(i)
	}
	if errors.Is(err, domain.ErrEntryNotFound) {
		return fmt.Errorf("no saved entry %q", ref)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "%s\n", entry.Name)
	fmt.Fprint(app.Out, render.New().Panels(entry.Result))
	return nil
}
