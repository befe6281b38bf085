package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/samuraitruong/guardian"
	"github.com/samuraitruong/guardian/gateway"
	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/credentials"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "guardian",
		Short:         "Policy block-tree engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var addr string
	var configURL string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with the HTTP and websocket gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			config := guardian.DefaultConfig()
			if configURL != "" {
				loaded, err := guardian.LoadConfig(ctx, configURL)
				if err != nil {
					return err
				}
				config = loaded
			}
			var options []guardian.Option
			if config.Credentials.RSAKeyURL != "" || config.Credentials.HMACKeyURL != "" {
				signer, err := credentials.NewScy(ctx, config.Credentials)
				if err != nil {
					return err
				}
				options = append(options, guardian.WithCredentials(signer))
			}
			engine := guardian.NewFromConfig(config, options...)
			log := logger.New("main")
			log.Info().Str("addr", addr).Msg("starting engine")
			return gateway.New(engine).ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":3002", "listen address")
	cmd.Flags().StringVarP(&configURL, "config", "c", "", "config URL (file, mem, s3, gs)")
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <policy-url>",
		Short: "Validate a policy definition without registering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			fs := afs.New()
			data, err := fs.DownloadWithURL(ctx, args[0])
			if err != nil {
				return err
			}
			definition := &model.Policy{}
			if err = yaml.Unmarshal(data, definition); err != nil {
				return fmt.Errorf("failed to parse %v: %w", args[0], err)
			}
			report := guardian.New().ValidatePolicy(ctx, definition)
			out, err := json.MarshalIndent(map[string]interface{}{
				"isValid": report.IsValid(),
				"errors":  report.Errors(),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !report.IsValid() {
				return fmt.Errorf("policy %v is invalid", args[0])
			}
			return nil
		},
	}
	return cmd
}
