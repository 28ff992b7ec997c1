package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func buildRootCmd() *cobra.Command {
	cfg := &clientConfig{
		Addr:    envStr("REMBGCTL_ADDR", "http://127.0.0.1:8080"),
		Timeout: 2 * time.Minute,
	}

	root := &cobra.Command{
		Use:           "rembgctl",
		Short:         "Operator utilities for a running rembgd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Base URL of the rembgd daemon (defaults REMBGCTL_ADDR)")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")

	health := &cobra.Command{
		Use:     "health",
		Short:   "Check daemon health",
		Example: "  rembgctl health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.printJSON("/health")
		},
	}

	status := &cobra.Command{
		Use:     "status",
		Short:   "Show pipeline status",
		Example: "  rembgctl status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.printJSON("/status")
		},
	}

	wait := &cobra.Command{
		Use:     "wait",
		Short:   "Block until the daemon reports ready",
		Example: "  rembgctl wait --timeout 60s",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.waitReady()
		},
	}

	var (
		outPath string
		format  string
		quality int
	)
	remove := &cobra.Command{
		Use:     "remove <image>",
		Short:   "Remove the background from an image file",
		Example: "  rembgctl remove photo.jpg -o cutout.png\n  rembgctl remove photo.jpg --format WEBP --quality 80",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.remove(args[0], outPath, format, quality)
		},
	}
	remove.Flags().StringVarP(&outPath, "output", "o", "", "Output path (default: no_bg_<stem>.<ext> next to input)")
	remove.Flags().StringVar(&format, "format", "PNG", "Output format: PNG or WEBP")
	remove.Flags().IntVar(&quality, "quality", 95, "WEBP quality 1-100")

	root.AddCommand(health, status, wait, remove)
	return root
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
