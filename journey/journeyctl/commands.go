package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/config"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/roi"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

type cli struct {
	opts options
}

// action changes the journey before it is rendered.
type action func(ctx context.Context, s *session, args []string) error

type output struct {
	State         types.State `json:"state"`
	ROI           roi.Summary `json:"roi"`
	CheckoutTotal float64     `json:"checkoutTotal"`
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "journeyctl",
		Short: "Walk the automation journey from your terminal",
		Long: `journeyctl keeps one traveler's journey per profile in a local SQLite file.
Each command applies a change, saves it, and shows the page the traveler is on.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadDefaults,
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.db, "db", "", "SQLite file holding journeys (env JOURNEY_DB)")
	flags.StringVar(&c.opts.profile, "profile", "", "journey profile name (env JOURNEY_PROFILE)")
	flags.StringVar(&c.opts.catalogPath, "catalog", "", "catalog document, JSON or YAML; the built-in catalog when empty")
	flags.StringVar(&c.opts.metricsFile, "metrics-file", "", "write Prometheus counters to this textfile on exit")
	flags.BoolVar(&c.opts.strict, "strict", false, "only allow the storybook page flow")
	flags.BoolVar(&c.opts.json, "json", false, "print state and ROI as JSON")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current page",
			Args:  cobra.NoArgs,
			RunE:  c.run(nil, (*view).page),
		},
		c.catalogCommand(),
		&cobra.Command{
			Use:   "name <name>",
			Short: "Tell the journey who you are",
			Args:  cobra.MinimumNArgs(1),
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				s.store.SetViewerName(ctx, strings.Join(args, " "))
				return nil
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "add <chapter-id>...",
			Short: "Add chapters to the cart",
			Args:  cobra.MinimumNArgs(1),
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				for _, id := range args {
					if _, ok := catalog.FindChapter(s.catalog, id); !ok {
						return fmt.Errorf("unknown chapter %q", id)
					}
				}
				for _, id := range args {
					s.store.AddToCart(ctx, id)
				}
				return nil
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "remove <chapter-id>...",
			Short: "Remove chapters from the cart",
			Args:  cobra.MinimumNArgs(1),
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				for _, id := range args {
					s.store.RemoveFromCart(ctx, id)
				}
				return nil
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "select [chapter-id]...",
			Short: "Mark chapters on the map; no ids clears the marks",
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				s.store.SetSelectedChapters(ctx, args)
				return nil
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "choose <chapter-id>",
			Short: "Add a chapter and burn through the map to it",
			Args:  cobra.ExactArgs(1),
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				if _, ok := catalog.FindChapter(s.catalog, args[0]); !ok {
					return fmt.Errorf("unknown chapter %q", args[0])
				}
				s.nav.ChooseChapter(ctx, args[0])
				return s.wait(ctx)
			}, (*view).page),
		},
		c.roiCommand(),
		&cobra.Command{
			Use:   "package <tier|none>",
			Short: "Select a package, or none to clear it",
			Args:  cobra.MinimumNArgs(1),
			RunE: c.run(func(ctx context.Context, s *session, args []string) error {
				tier := strings.Join(args, " ")
				if strings.EqualFold(tier, "none") {
					s.store.SelectPackage(ctx, nil)
					return nil
				}
				pkg, ok := catalog.FindPackage(s.catalog, tier)
				if !ok {
					return fmt.Errorf("unknown package %q", tier)
				}
				s.store.SelectPackage(ctx, &pkg)
				return nil
			}, (*view).page),
		},
		c.pageCommand(),
		&cobra.Command{
			Use:   "begin",
			Short: "Open the book and travel to the map",
			Args:  cobra.NoArgs,
			RunE: c.run(func(ctx context.Context, s *session, _ []string) error {
				s.nav.Begin(ctx)
				return s.wait(ctx)
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "checkout",
			Short: "Open the treasure chest and go to checkout",
			Args:  cobra.NoArgs,
			RunE: c.run(func(ctx context.Context, s *session, _ []string) error {
				s.nav.ProceedToCheckout(ctx)
				return s.wait(ctx)
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "pay",
			Short: "Simulate payment from the checkout page",
			Args:  cobra.NoArgs,
			RunE: c.run(func(ctx context.Context, s *session, _ []string) error {
				if err := s.nav.Pay(ctx); err != nil {
					return err
				}
				return s.wait(ctx)
			}, (*view).page),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Start the journey over, keeping your name",
			Args:  cobra.NoArgs,
			RunE: c.run(func(ctx context.Context, s *session, _ []string) error {
				s.nav.Reset(ctx)
				return nil
			}, (*view).page),
		},
	)
	return root
}

// loadDefaults fills every flag left unset from the environment.
func (c *cli) loadDefaults(cmd *cobra.Command, _ []string) error {
	var cfg config.CLI
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		c.opts.db = cfg.StoragePath
	}
	if !flags.Changed("profile") {
		c.opts.profile = cfg.Profile
	}
	if !flags.Changed("catalog") {
		c.opts.catalogPath = cfg.CatalogPath
	}
	if !flags.Changed("metrics-file") {
		c.opts.metricsFile = cfg.MetricsFile
	}
	if !flags.Changed("strict") {
		c.opts.strict = cfg.StrictNavigation
	}
	c.opts.timings = cfg.Delays.Timings()
	return nil
}

// run opens the session, applies act and renders the result.
func (c *cli) run(act action, render func(*view, types.State)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		s, err := openSession(ctx, &c.opts)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}()

		if act != nil {
			if err := act(ctx, s, args); err != nil {
				return err
			}
		}

		st := s.store.State()
		if c.opts.json {
			return writeJSON(cmd.OutOrStdout(), output{
				State:         st,
				ROI:           s.store.ROI(),
				CheckoutTotal: s.store.CheckoutTotal(),
			})
		}
		v := newView(cmd.OutOrStdout(), s.catalog)
		return v.safely(func() { render(v, st) })
	}
}

func (c *cli) catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List chapters, packages and ROI sliders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load(c.opts.catalogPath)
			if err != nil {
				return err
			}
			if c.opts.json {
				return writeJSON(cmd.OutOrStdout(), cat)
			}
			v := newView(cmd.OutOrStdout(), cat)
			return v.safely(v.catalogListing)
		},
	}
}

func (c *cli) roiCommand() *cobra.Command {
	var hourly, hours, team float64
	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Show the treasury report, optionally moving the sliders",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, s *session, _ []string) error {
		var patch types.ROIInputsPatch
		changed := false
		if cmd.Flags().Changed("hourly") {
			patch.AvgHourlyCost, changed = &hourly, true
		}
		if cmd.Flags().Changed("hours") {
			patch.HoursSavedPerWeek, changed = &hours, true
		}
		if cmd.Flags().Changed("team") {
			patch.TeamSize, changed = &team, true
		}
		if changed {
			s.store.UpdateROIInputs(ctx, patch)
		}
		return nil
	}, (*view).summary)
	cmd.Flags().Float64Var(&hourly, "hourly", 0, "average hourly cost")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours saved per week")
	cmd.Flags().Float64Var(&team, "team", 0, "team size")
	return cmd
}

func (c *cli) pageCommand() *cobra.Command {
	var animate bool
	cmd := &cobra.Command{
		Use:   "page <landing|map|chapter|roi|checkout>",
		Short: "Turn to a page",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, s *session, args []string) error {
		page, ok := navigation.ParsePage(args[0])
		if !ok {
			return fmt.Errorf("unknown page %q", args[0])
		}
		from := s.store.State().CurrentPage
		if policy := s.store.Policy(); !policy.Allows(from, page) {
			return fmt.Errorf("cannot turn from %s to %s with %s navigation", from, page, policy)
		}
		if !animate {
			s.nav.GoTo(ctx, page)
			return nil
		}
		s.nav.GoToAfter(ctx, page, navigation.DelayFor(c.opts.timings, from, page))
		return s.wait(ctx)
	}, (*view).page)
	cmd.Flags().BoolVar(&animate, "animate", false, "wait for the page-turn delay")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
