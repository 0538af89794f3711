package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/certship/pkg/certship"
	logpkg "github.com/bft-labs/certship/pkg/log"
)

var errUnreachable = errors.New("endpoint not reachable")

func newProbeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the endpoint accepts a mutual TLS connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}

			f, err := certship.New(c.cfg.Library(),
				certship.WithLogger(logpkg.NewZerologAdapterWithLogger(c.log)),
			)
			if err != nil {
				return err
			}

			if !f.Probe(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unreachable (credentials %s)\n", f.Endpoint(), f.CredentialState())
				return errUnreachable
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: reachable\n", f.Endpoint())
			return nil
		},
	}
}
