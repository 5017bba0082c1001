package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jfeuerstein/josh-space/internal/config"
	"github.com/jfeuerstein/josh-space/internal/registry"
	"github.com/jfeuerstein/josh-space/internal/session"
	"github.com/jfeuerstein/josh-space/internal/tiles"
	"github.com/jfeuerstein/josh-space/internal/tracking"
)

var rootCmd = &cobra.Command{
	Use:   "josh-space",
	Short: "josh space - a small portfolio behind click-to-align tiles",
	Long: `Serves the josh space portfolio page. Projects sit behind one of three
interaction variants: lens (triple click to view), arm (click twice to solve)
or password (click twice, then enter the project's password).

Configuration comes from an optional YAML file (JOSH_SPACE_CONFIG_PATH), a .env
file in the working directory, and JOSH_SPACE_* environment variables.`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  serve,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the configured projects",
	RunE:  listProjects,
}

var (
	variantFlag string
	jsonFlag    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "override the interaction variant (lens, arm, password)")
	projectsCmd.Flags().BoolVar(&jsonFlag, "json", false, "print projects as JSON")
	rootCmd.AddCommand(serveCmd, projectsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSite(cfg config.Config) (*tiles.Machine, error) {
	variant := cfg.Site.Variant
	if variantFlag != "" {
		variant = variantFlag
	}
	mode, err := tiles.ParseMode(variant)
	if err != nil {
		return nil, err
	}
	projects, err := registry.Load(cfg.Site.ProjectsPath)
	if err != nil {
		return nil, err
	}
	return tiles.New(mode, projects)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	machine, err := loadSite(cfg)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracker *tracking.Store
	if cfg.Tracking.Enabled {
		tracker, err = tracking.Open(ctx, cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("open analytics: %w", err)
		}
		defer tracker.Close()
		logger.Info("privacy: visitor tracking enabled with hashed IP addresses", zap.String("db", cfg.DB.Path))
	}

	token, err := tracking.NewToken()
	if err != nil {
		return err
	}
	admin := adminAuth{username: cfg.Admin.Username, password: cfg.Admin.Password, token: token}
	if cfg.DefaultAdminCredentials() && tracker != nil {
		logger.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	sessions := session.NewStore(cfg.Site.SessionTTL, time.Minute,
		session.WithMaxSessions(cfg.Site.MaxSessions))
	defer sessions.Close()

	gin.SetMode(cfg.Server.GinMode)
	srv := newServer(machine, sessions, tracker, admin, logger)
	srv.retention = cfg.Tracking.Retention
	// Runs before the deferred tracker close.
	defer srv.wait()
	if tracker != nil {
		srv.startCleanup(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", httpServer.Addr),
			zap.String("variant", string(machine.Mode())),
			zap.Int("projects", machine.Len()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func listProjects(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	machine, err := loadSite(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(machine.Projects())
	}
	fmt.Fprintf(out, "variant: %s\n", machine.Mode())
	for i, p := range machine.Projects() {
		gate := ""
		if machine.Mode() == tiles.ModePassword && p.Gated() {
			gate = " [password]"
		}
		fmt.Fprintf(out, "%d. %s%s\n   %s\n   %s\n", i+1, strings.ReplaceAll(p.Title, "\n", " "), gate, p.Description, p.URL)
	}
	return nil
}
