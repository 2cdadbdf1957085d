package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/diybuddy/projectbuddy/app/bootstrap"
	"github.com/diybuddy/projectbuddy/app/events"
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/resources"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/event"
)

const source = "cli"

// projectbuddy basket:show
func basketShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:show",
		Short: "Print the basket and its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := boot(cmd, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer done()

			items, err := s.Basket.Items(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printBasket(out, items, s.Basket.Pricing()); err != nil {
				return err
			}
			if at, ok := s.Basket.SavedAt(cmd.Context()); ok {
				fmt.Fprintf(out, "Last saved %s\n", at.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

// projectbuddy basket:create <project>
func basketCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:create <project>",
		Short: "Replace the basket with every in-stock product of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := boot(cmd, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer done()

			change, err := s.Catalog.CreateBasketForProject(cmd.Context(), args[0])
			if errors.Is(err, services.ErrNoProductsAvailable) {
				printNotice(cmd.OutOrStdout(), resources.NoProductsNotice())
			}
			if err != nil {
				return err
			}
			return report(cmd, s.Basket, change)
		},
	}
}

// projectbuddy basket:add <product>
func basketAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:add <product>",
		Short: "Add a catalog product, or bump its quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := boot(cmd, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer done()

			change, err := s.Catalog.AddProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report(cmd, s.Basket, change)
		},
	}
}

// projectbuddy basket:set <product> <qty>
func basketSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:set <product> <qty>",
		Short: "Set the quantity of a basket entry; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a whole number", args[1])
			}
			return withBasket(cmd, func(s *services.BasketStore) (services.Change, error) {
				return s.SetQuantity(cmd.Context(), args[0], q)
			})
		},
	}
}

// projectbuddy basket:remove <product>
func basketRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:remove <product>",
		Short: "Remove a product from the basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBasket(cmd, func(s *services.BasketStore) (services.Change, error) {
				return s.Remove(cmd.Context(), args[0])
			})
		},
	}
}

// projectbuddy basket:checkout
func basketCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basket:checkout",
		Short: "Place the order and clear the basket",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := boot(cmd, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer done()

			receipt, err := s.Basket.Checkout(cmd.Context())
			if err != nil {
				return err
			}

			notice := resources.CheckoutNotice()
			event.Fire(events.BasketCheckedOut, events.CheckedOut{Receipt: receipt, Notice: notice, Source: source})

			out := cmd.OutOrStdout()
			printNotice(out, notice)
			fmt.Fprintf(out, "Order %s: %d item(s), total $%s\n", receipt.OrderRef, receipt.Items, receipt.Totals.Total)
			return nil
		},
	}
}

// withBasket boots, applies fn to the store and reports the result.
func withBasket(cmd *cobra.Command, fn func(*services.BasketStore) (services.Change, error)) error {
	s, done, err := boot(cmd, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer done()

	change, err := fn(s.Basket)
	if err != nil {
		return err
	}
	return report(cmd, s.Basket, change)
}

func report(cmd *cobra.Command, store *services.BasketStore, change services.Change) error {
	notice := resources.NoticeFor(change)
	event.Fire(events.BasketChanged, events.Changed{Change: change, Notice: notice, Source: source})

	items, err := store.Items(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printNotice(out, notice)
	return printBasket(out, items, store.Pricing())
}

func printNotice(w io.Writer, n *models.Notice) {
	if n == nil {
		return
	}
	prefix := "✔"
	if n.Variant == models.NoticeDestructive {
		prefix = "✖"
	}
	fmt.Fprintf(w, "%s %s: %s\n", prefix, n.Title, n.Description)
}

func printBasket(out io.Writer, items []models.Product, pricing services.Pricing) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "Your basket is empty.")
		return err
	}
	t := services.ComputeTotals(items, pricing).Display()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tLINE")
	for _, p := range items {
		price := decimal.NewFromFloat(p.Price)
		line := price.Mul(decimal.NewFromInt(int64(p.Units())))
		fmt.Fprintf(w, "%s\t%s\t%d\t$%s\t$%s\n", p.ID, p.Name, p.Units(), price.StringFixed(2), line.StringFixed(2))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Subtotal (%d items)\t$%s\n", len(items), t.Subtotal)
	if t.FreeShipping {
		fmt.Fprintln(w, "Shipping\tFREE")
	} else {
		fmt.Fprintf(w, "Shipping\t$%s\t(free on orders over $%s)\n", t.Shipping, t.FreeShippingOver)
	}
	fmt.Fprintf(w, "Tax\t$%s\n", t.Tax)
	fmt.Fprintf(w, "Total\t$%s\n", t.Total)
	return w.Flush()
}
