package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sliderCaptchaAuth/config"
	"sliderCaptchaAuth/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("captcha: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "captcha",
		Short:         "Sliding puzzle captcha service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.FileEnv), "YAML config file")

	load := func() (*config.Config, error) {
		return config.LoadFile(configPath)
	}

	root.AddCommand(newServeCmd(load), newGenerateCmd(load))
	return root
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return app.RunServer(cmd.Context(), cfg)
		},
	}
}

func newGenerateCmd(load func() (*config.Config, error)) *cobra.Command {
	var srcPath, outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create one puzzle and write its images to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			res, err := app.GenerateFiles(cmd.Context(), cfg, srcPath, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\npiece: %s\nbackground: %s\n", res.ID, res.PiecePath, res.BackgroundPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&srcPath, "src", "", "source image (default: configured image sources)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
