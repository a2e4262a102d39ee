package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/kitchen-roster/internal/app"
	"github.com/nhle/kitchen-roster/internal/credential"
	"github.com/nhle/kitchen-roster/internal/identity"
	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
	"github.com/nhle/kitchen-roster/internal/store"
	appsync "github.com/nhle/kitchen-roster/internal/sync"
)

var (
	configFlag   string
	dbFlag       string
	dayFlag      string
	scopeFlag    string
	categoryFlag string
	mineOnlyFlag bool
)

var rootCmd = &cobra.Command{
	Use:          "roster",
	Short:        "Live daily task roster for restaurant staff",
	SilenceUsage: true,
	RunE:         runDashboard,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live roster dashboard (default)",
	RunE:  runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", model.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dayFlag, "day", "", "roster day as YYYY-MM-DD (default today)")

	for _, c := range []*cobra.Command{rootCmd, dashboardCmd} {
		c.Flags().StringVar(&scopeFlag, "scope", "all", "initial scope: all, mine, direct, role")
		c.Flags().StringVar(&categoryFlag, "category", "", "initial category tab")
		c.Flags().BoolVar(&mineOnlyFlag, "mine-only", false, "only keep tasks assigned to you or your roles")
	}

	rootCmd.AddCommand(dashboardCmd, generateCmd, scheduleCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(taskCmd, userCmd, roleCmd, templateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --db override.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbFlag != "" {
		cfg.Database.Path = dbFlag
	}
	return cfg, nil
}

// openStore opens the configured database, creating its directory.
func openStore(cfg *model.AppConfig) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// resolveDay returns --day or today.
func resolveDay() (string, error) {
	day := strings.TrimSpace(dayFlag)
	if day == "" {
		return model.Today(), nil
	}
	if !model.ValidDay(day) {
		return "", fmt.Errorf("invalid --day %q, use YYYY-MM-DD", day)
	}
	return day, nil
}

// openVault opens the system keyring. When none is available the session
// falls back to an in-memory ring, so only ROSTER_USER identifies the
// viewer.
func openVault() *credential.Vault {
	v, err := credential.Open()
	if err != nil {
		log.Printf("[roster] keyring unavailable, using %s only: %v", identity.EnvUser, err)
		return credential.NewVault(keyring.NewArrayKeyring(nil))
	}
	return v
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	day, err := resolveDay()
	if err != nil {
		return err
	}
	scope, err := roster.ParseScope(scopeFlag)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so log lines go to a file.
	logPath := filepath.Join(filepath.Dir(configFlag), "roster.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "roster")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	viewer, err := identity.NewProvider(openVault(), st).Current(ctx)
	if err != nil {
		if !errors.Is(err, identity.ErrNoSession) {
			return err
		}
		log.Printf("[roster] %v; nothing will count as yours", err)
	}

	feed := appsync.NewFeed(st, cfg.PollInterval())
	sess, err := roster.Open(ctx, roster.Options{
		Day:    day,
		Viewer: viewer,
		Store:  st,
		Subscribe: func(ctx context.Context, day string) (roster.ChangeStream, error) {
			sub, err := feed.Subscribe(ctx, day)
			if err != nil {
				return nil, err
			}
			return sub, nil
		},
		Categories:    cfg.Categories,
		MineOnly:      mineOnlyFlag,
		Rollback:      cfg.Roster.RollbackOnFailure,
		CommitTimeout: cfg.CommitTimeout(),
	})
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer sess.Close()

	initial := roster.Filter{Scope: scope, Category: categoryFlag}
	p := tea.NewProgram(app.New(sess, st, initial), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
