package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"birdeyeflow/config"
	"birdeyeflow/logger"
	"birdeyeflow/models"
	"birdeyeflow/protocol"
	"birdeyeflow/reader/birdeye"
)

const defaultConfigPath = "config/config.yml"

var cfgFile string

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.GetLogger().WithError(err).Warn("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "birdeyectl",
		Short:         "Query the Birdeye REST API and preview stream subscriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "Path to configuration file")

	root.AddCommand(newOHLCVCmd(), newOverviewCmd(), newMessagesCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(config.ResolvePath(cfgFile, defaultConfigPath))
	if err != nil {
		return nil, err
	}
	if err := logger.GetLogger().Configure(cfg.Logging.Level, cfg.Logging.Format, "stderr", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newOHLCVCmd() *cobra.Command {
	var (
		address string
		chart   string
		from    int64
		to      int64
	)
	cmd := &cobra.Command{
		Use:   "ohlcv",
		Short: "Fetch historical OHLCV bars for a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			chartType, err := protocol.ParseChartType(chart)
			if err != nil {
				return err
			}
			if to == 0 {
				to = time.Now().Unix()
			}
			if from == 0 {
				from = to - int64(24*time.Hour/time.Second)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			resp, err := birdeye.NewClient(cfg).OHLCV(cmd.Context(), address, chartType, from, to)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Token address")
	cmd.Flags().StringVar(&chart, "type", string(protocol.Chart1m), "Chart interval")
	cmd.Flags().Int64Var(&from, "from", 0, "Start of the range in unix seconds (default: 24h before --to)")
	cmd.Flags().Int64Var(&to, "to", 0, "End of the range in unix seconds (default: now)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview ADDRESS...",
		Short: "Fetch the token overview for one or more tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := birdeye.NewClient(cfg)

			results := make([]models.TokenOverview, len(args))
			g, gctx := errgroup.WithContext(cmd.Context())
			for i, address := range args {
				i, address := i, address
				g.Go(func() error {
					resp, err := client.TokenOverview(gctx, address)
					if err != nil {
						return fmt.Errorf("%s: %w", address, err)
					}
					results[i] = resp.Data
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
}

func newMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "Print the subscribe messages built from the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			subs, err := cfg.BuildSubscriptions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, sub := range subs {
				payload, err := protocol.Encode(sub)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(payload))
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
