package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bakerybot/internal/app"
	"bakerybot/internal/config"
	"bakerybot/internal/logger"
	"bakerybot/internal/model"
	"bakerybot/pkg/uid"
)

var (
	jsonOutput bool
	verbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bakeryctl",
		Short: "Operate the bakery inventory assistant",
		Long: `bakeryctl reads and updates the same durable store as the API server.
Configuration comes from the environment (and .env), exactly as for the server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	root.AddCommand(statusCmd())
	root.AddCommand(predictCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(remindersCmd())
	root.AddCommand(clarificationCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp opens the configured backends for one command.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Nop()
	if verbose {
		if log, err = logger.New("development", true); err != nil {
			return err
		}
		defer log.Sync()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCmd() *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the inventory report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if jsonOutput {
					snap, err := a.Reporter.Snapshot(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), snap)
				}
				if !asTable {
					report, err := a.Reporter.Render(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), report)
					return nil
				}
				doc, err := a.Store.LoadInventory(ctx)
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Category", "Item", "Status", "Quantity", "Updated"})
				for _, c := range a.Catalog.Categories() {
					for _, item := range c.Items {
						qty, updated := "", ""
						if rec := doc.Items[item]; rec != nil {
							if rec.Quantity != nil {
								qty = strings.TrimSpace(fmt.Sprintf("%g %s", *rec.Quantity, rec.Unit))
							}
							updated = rec.LastUpdatedAt.In(a.Location).Format("Jan 2 15:04")
						}
						tw.AppendRow(table.Row{c.Name, item, doc.StatusOf(item), qty, updated})
					}
					tw.AppendSeparator()
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "render as a table")
	return cmd
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "List items due for restock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				preds, err := a.Reporter.Predict(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), preds)
				}
				if len(preds) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No restocks predicted.")
					return nil
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Item", "Avg interval (days)", "Since restock (days)", "Urgent"})
				for _, p := range preds {
					tw.AppendRow(table.Row{p.Item, p.AvgIntervalDays, p.DaysSinceLastRestock, p.Urgent})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent status changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries, err := a.Reporter.History(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"When", "Item", "Action", "Quantity"})
				for _, h := range entries {
					qty := ""
					if h.Quantity != nil {
						qty = strings.TrimSpace(fmt.Sprintf("%g %s", *h.Quantity, h.Unit))
					}
					tw.AppendRow(table.Row{h.Timestamp.In(a.Location).Format(time.DateTime), h.Item, h.Action, qty})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func sendCmd() *cobra.Command {
	var requester string
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Process a chat message as if it came from the bridge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				reply, ok := a.Assistant.ProcessMessage(ctx, strings.Join(args, " "), requester)
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"reply": reply, "replied": ok})
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "(no reply)")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&requester, "requester", "cli", "requester id")
	return cmd
}

func remindersCmd() *cobra.Command {
	rem := &cobra.Command{Use: "reminders", Short: "Inspect and resolve reminders"}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List open reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rs, err := a.Engine.Pending.Reminders(ctx, all)
				if err != nil {
					return err
				}
				return printReminders(cmd.OutOrStdout(), a, rs)
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include resolved reminders")

	due := &cobra.Command{
		Use:   "due",
		Short: "List reminders due now without resolving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rs, err := a.Engine.Pending.DueReminders(ctx, a.Engine.Now())
				if err != nil {
					return err
				}
				return printReminders(cmd.OutOrStdout(), a, rs)
			})
		},
	}

	var id string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one reminder by id, or every due reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if id != "" {
					canonical, err := uid.Normalize(id)
					if err != nil {
						return err
					}
					ok, err := a.Engine.Pending.ResolveReminder(ctx, canonical)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("no open reminder %q", id)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "resolved", id)
					return nil
				}
				rs, err := a.Engine.Pending.MarkDue(ctx, a.Engine.Now())
				if err != nil {
					return err
				}
				return printReminders(cmd.OutOrStdout(), a, rs)
			})
		},
	}
	resolve.Flags().StringVar(&id, "id", "", "reminder id")

	rem.AddCommand(list, due, resolve)
	return rem
}

func printReminders(w io.Writer, a *app.App, rs []model.Reminder) error {
	if jsonOutput {
		if rs == nil {
			rs = []model.Reminder{}
		}
		return printJSON(w, rs)
	}
	if len(rs) == 0 {
		fmt.Fprintln(w, "No reminders.")
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Requester", "When", "Text", "Created", "Resolved"})
	for _, r := range rs {
		tw.AppendRow(table.Row{r.ID, r.RequesterID, r.When, r.Text, r.CreatedAt.In(a.Location).Format("Jan 2 15:04"), r.Resolved})
	}
	tw.Render()
	return nil
}

func clarificationCmd() *cobra.Command {
	cl := &cobra.Command{Use: "clarification", Short: "Inspect or clear a requester's open question"}

	show := &cobra.Command{
		Use:   "show <requester>",
		Short: "Show the open clarification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				c, err := a.Engine.Pending.GetClarification(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), c)
				}
				if c == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No open clarification.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  phrase:  %s\n  options: %s\n  asked:   %s\n",
					c.Question, c.RawPhrase, strings.Join(c.Options, ", "), c.CreatedAt.In(a.Location).Format(time.DateTime))
				return nil
			})
		},
	}

	drop := &cobra.Command{
		Use:   "clear <requester>",
		Short: "Drop the open clarification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.Engine.Pending.ResolveClarification(ctx, args[0])
				if err != nil {
					return err
				}
				if removed == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared:", removed.Question)
				return nil
			})
		},
	}

	cl.AddCommand(show, drop)
	return cl
}
