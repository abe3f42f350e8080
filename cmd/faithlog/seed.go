package main

import (
	"context"
	"errors"
	"fmt"

	"faithlog/internal/config"
	"faithlog/internal/domain"

	"github.com/spf13/cobra"
)

var errNoOperator = errors.New("no operator is configured, set OPERATORS or pass --as")

func newSeedDemoCmd() *cobra.Command {
	var as int64

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Add the demo resources through the manual path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			caller, err := seedCaller(cfg, as)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			added, err := a.svc.SeedDemo(ctx, caller)
			log.InfoContext(ctx, "Demo resources are seeded",
				"added", added,
				"userID", caller)

			return err
		},
	}

	cmd.Flags().Int64Var(&as, "as", 0, "Operator user ID to seed as (defaults to the first operator)")

	return cmd
}

// seedCaller picks the caller for seeding. Only operators may seed.
func seedCaller(cfg config.Config, as int64) (domain.UserID, error) {
	if as == 0 {
		if len(cfg.Operators) == 0 {
			return 0, errNoOperator
		}

		as = cfg.Operators[0]
	}

	if !cfg.IsOperator(as) {
		return 0, fmt.Errorf("user %d is not an operator", as)
	}

	return domain.UserID(as), nil
}
