package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backkem/holopair/pkg/channel"
	"github.com/backkem/holopair/pkg/discovery"
	"github.com/backkem/holopair/pkg/pairing"
)

var errNoPeer = errors.New("no peer address: pass --peer or enable discovery")

func responderCmd() *cobra.Command {
	var peer string

	cmd := &cobra.Command{
		Use:   "responder",
		Short: "Connect to an initiator and follow its lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("peer") {
				cfg.Peer = peer
			}
			ctx := cmd.Context()

			addr, err := peerAddr(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Connecting to %s\n", addr)
			conn, err := channel.Dial(ctx, addr, channel.Config{LoggerFactory: loggerFactory})
			if err != nil {
				return fmt.Errorf("dial: %w", err)
			}
			defer conn.Close()

			return runPairing(ctx, conn, pairing.RoleResponder)
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "initiator address host:port (default: browse via mDNS)")
	return cmd
}

func peerAddr(ctx context.Context) (string, error) {
	if cfg.Peer != "" {
		return cfg.Peer, nil
	}
	if !cfg.DiscoveryEnabled() {
		return "", errNoPeer
	}

	resolver, err := discovery.NewResolver(discovery.ResolverConfig{
		Role:          discovery.RoleInitiator,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return "", fmt.Errorf("mDNS: %w", err)
	}
	p, err := resolver.Browse(ctx)
	if err != nil {
		return "", fmt.Errorf("browse: %w", err)
	}
	return p.Addr()
}
