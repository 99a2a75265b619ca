package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backkem/holopair/pkg/channel"
	"github.com/backkem/holopair/pkg/discovery"
	"github.com/backkem/holopair/pkg/pairing"
)

func initiatorCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "initiator",
		Short: "Wait for a responder and drive the pairing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			ctx := cmd.Context()

			ln, err := channel.Listen(cfg.Listen, channel.Config{LoggerFactory: loggerFactory})
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			defer ln.Close()

			if cfg.DiscoveryEnabled() {
				adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{LoggerFactory: loggerFactory})
				if err := adv.Start(cfg.Instance, ln.Port(), discovery.RoleInitiator); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: mDNS advertising failed: %v\n", err)
				} else {
					defer adv.Close()
					fmt.Fprintf(cmd.OutOrStdout(), "Advertising %q\n", adv.InstanceName())
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Waiting for a responder on %s\n", ln.Addr())
			conn, err := ln.Accept(ctx)
			if err != nil {
				return fmt.Errorf("accept: %w", err)
			}
			defer conn.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", conn.RemoteAddr())

			return runPairing(ctx, conn, pairing.RoleInitiator)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :7447)")
	return cmd
}
