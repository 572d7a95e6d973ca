package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/cli/render"
)

// PendingCommand returns the pending command.
func PendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "Show (or discard) the cached pending checkout",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "discard",
				Usage: "Clear the pending checkout without reconciling it",
			},
			FormatFlag,
		},
		Action: pendingAction,
	}
}

func pendingAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.detach()

	manager, err := e.checkoutManager()
	if err != nil {
		return err
	}

	if c.Bool("discard") {
		if err := manager.Discard(); err != nil {
			return cli.Exit(fmt.Sprintf("discard failed: %v", err), 1)
		}
		fmt.Fprintln(c.App.Writer, "pending checkout discarded")
		return nil
	}

	record := manager.Pending()
	if record == nil {
		fmt.Fprintln(c.App.Writer, "no pending checkout")
		return nil
	}

	renderer, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return renderer.Render(record)
}
