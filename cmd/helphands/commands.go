package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"helphands-go/internal/app"
	userdomain "helphands-go/internal/domain/user"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("app: starting", "env", cfg.Env)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(log, cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			if migrate {
				if err := application.Migrate(); err != nil {
					_ = application.Close()
					return fmt.Errorf("migrate: %w", err)
				}
			}

			srv := application.HTTPServer()
			log.Info("http: listening", "addr", srv.Addr)

			serverErrCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErrCh <- err
				}
				close(serverErrCh)
			}()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info("app: shutdown signal received")
			case err := <-serverErrCh:
				if err != nil {
					runErr = fmt.Errorf("http server: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http: graceful shutdown failed", "err", err)
				runErr = errors.Join(runErr, err)
			}
			if err := application.Close(); err != nil {
				log.Error("app: close failed", "err", err)
				runErr = errors.Join(runErr, err)
			}

			if runErr == nil {
				log.Info("app: stopped")
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(log, cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer application.Close()

			return application.Migrate()
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var input userdomain.SeedAdminInput

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account if the email is not registered yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Password == "" {
				input.Password = os.Getenv("ADMIN_PASSWORD")
			}

			application, err := app.New(log, cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer application.Close()

			user, created, err := application.Users().EnsureAdmin(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists with role %s\n", user.Email, user.Role)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "Administrator", "Admin display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "Admin email")
	cmd.Flags().StringVar(&input.Password, "password", "", "Admin password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
