package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/cli/render"
)

// ReconcileCommand returns the reconcile command.
func ReconcileCommand() *cli.Command {
	return &cli.Command{
		Name:   "reconcile",
		Usage:  "Check the pending checkout against the transaction endpoint",
		Flags:  []cli.Flag{FormatFlag},
		Action: reconcileAction,
	}
}

func reconcileAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.detach()

	renderer, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	manager, err := e.checkoutManager()
	if err != nil {
		return err
	}

	outcome, err := manager.Reconcile(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reconciliation failed: %v", err), 1)
	}
	if outcome == nil {
		fmt.Fprintln(c.App.Writer, "no pending checkout")
		return nil
	}

	return renderer.Render(outcome)
}
