package main

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dlremindme/internal/engine"
	"dlremindme/internal/handlers"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background reminder loop",
		RunE:  runServe,
	}
	cmd.Flags().String("static", "", "directory to serve static frontend files from (optional)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := engine.NewLoop(a.engine, engine.LoopConfig{
		Interval: a.cfg.Reminder.Interval,
		Backoff:  a.cfg.Reminder.Backoff,
	}, a.logger)
	if err := loop.Start(ctx); err != nil {
		return err
	}
	defer loop.Stop()

	h := handlers.New(a.store, a.session, a.notifier, a.clock, a.zone, a.logger)
	r := h.Router()
	if dir, _ := cmd.Flags().GetString("static"); dir != "" {
		staticFs := http.FileServer(http.Dir(dir))
		r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if ctype := mime.TypeByExtension(filepath.Ext(req.URL.Path)); ctype != "" {
				w.Header().Set("Content-Type", ctype)
			}
			staticFs.ServeHTTP(w, req)
		}))
	}

	sc := a.cfg.Server
	srv := &http.Server{
		Addr:         sc.Addr,
		Handler:      r,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if sc.TLSCert != "" && sc.TLSKey != "" {
			a.logger.Info("starting https server", "addr", sc.Addr)
			errCh <- srv.ListenAndServeTLS(sc.TLSCert, sc.TLSKey)
			return
		}
		a.logger.Info("starting http server", "addr", sc.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
