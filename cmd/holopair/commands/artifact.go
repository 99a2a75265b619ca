package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/render"
	"github.com/backkem/holopair/pkg/verification"
)

func artifactCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "artifact [hex-secret]",
		Short: "Print both views of the verification artifact for a secret",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := crypto.NewProvider(nil)

			var secret []byte
			if len(args) == 1 {
				b, err := hex.DecodeString(args[0])
				if err != nil {
					return fmt.Errorf("secret: %w", err)
				}
				secret = b
			} else {
				b, err := provider.GenerateNonce()
				if err != nil {
					return err
				}
				secret = b
				fmt.Fprintf(cmd.OutOrStdout(), "Secret %s\n", hex.EncodeToString(secret))
			}

			gen, err := verification.NewGenerator(cfg.ParsedScheme(), provider)
			if err != nil {
				return err
			}
			a, err := gen.Generate(secret, count)
			if err != nil {
				return err
			}

			term := render.NewTerminal(render.Config{Out: cmd.OutOrStdout()})
			term.Show(a, verification.PerspectiveInitiator)
			term.Show(a, verification.PerspectiveResponder)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 4, "number of elements")
	return cmd
}
