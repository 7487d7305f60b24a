package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"game-review-service/internal/config"
	"game-review-service/internal/logger"
	"game-review-service/internal/service"
)

var (
	cfg     *config.Config
	log     *zap.Logger
	verbose bool
	topN    int
)

var rootCmd = &cobra.Command{
	Use:   "game-review-service",
	Short: "Free-to-play game catalog with local reviews and a top-rated leaderboard",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var dotenv bool
		var err error
		cfg, dotenv, err = config.Load()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		if !dotenv {
			log.Debug("no .env file loaded")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           a.router(log.Named("http")),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("game review service running", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the top-rated games",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tGAME\tTITLE\tAVERAGE\tREVIEWS")
		for i, e := range a.reviews.TopGames(cmd.Context(), topN) {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\n", i+1, e.GameID, e.Title, e.AverageScore, e.ReviewCount)
		}
		return w.Flush()
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <gameId>",
	Short: "Print the reviews of one game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		reviews := a.reviews.Reviews(cmd.Context(), args[0])
		if len(reviews) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reviews yet.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tSCORE\tCOMMENT")
		for i, r := range reviews {
			fmt.Fprintf(w, "%d\t%d\t%s\n", i, r.Score, r.Comment)
		}
		fmt.Fprintf(w, "\naverage %.1f over %d reviews\n", service.AverageScore(reviews), len(reviews))
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	topCmd.Flags().IntVarP(&topN, "limit", "n", service.DefaultTopLimit, "number of games to show")
	rootCmd.AddCommand(serveCmd, topCmd, reviewsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
