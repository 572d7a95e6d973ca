package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/types"
)

// CheckoutCommand returns the checkout command.
func CheckoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "Create a hosted-checkout session and print its redirect URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Purchase type: credits or subscription",
				Value: "credits",
			},
			&cli.Float64Flag{
				Name:     "amount",
				Usage:    "Purchase amount in USD",
				Required: true,
			},
			FormatFlag,
		},
		Action: checkoutAction,
	}
}

func checkoutAction(c *cli.Context) error {
	purchaseType := types.PurchaseType(c.String("type"))
	switch purchaseType {
	case types.PurchaseCredits, types.PurchaseSubscription:
	default:
		return cli.Exit(fmt.Sprintf("invalid purchase type %q (must be credits or subscription)", purchaseType), 1)
	}
	amount := c.Float64("amount")
	if amount <= 0 {
		return cli.Exit("amount must be positive", 1)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.detach()

	manager, err := e.checkoutManager()
	if err != nil {
		return err
	}

	session, err := manager.Begin(c.Context, purchaseType, amount)
	if err != nil {
		return cli.Exit(fmt.Sprintf("checkout failed: %v", err), 1)
	}

	// The redirect URL goes to stdout so it can be piped to a browser opener.
	fmt.Fprintln(c.App.Writer, session.RedirectURL)
	return nil
}
