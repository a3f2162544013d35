package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trailmeet/internal/app/event"
	"trailmeet/internal/client"
)

func (c *cli) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, create, join and leave events",
	}
	cmd.AddCommand(
		c.eventsListCmd(),
		c.eventsCreateCmd(),
		c.eventsMineCmd(),
		c.membershipCmd("join", "Join an event"),
		c.membershipCmd("leave", "Leave an event you joined"),
		c.eventsDeleteCmd(),
	)
	return cmd
}

func (c *cli) eventsListCmd() *cobra.Command {
	var eventType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active events, optionally of one --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.state.Refresh(cmd.Context()); err != nil {
				return err
			}
			c.state.SetFilter(eventType)

			out := cmd.OutOrStdout()
			printEvents(out, c.state.Visible())

			counts := c.state.Counts()
			fmt.Fprintf(out, "\n%d of %d events", len(c.state.Visible()), counts[event.AllTypes])
			for _, t := range c.state.Types() {
				fmt.Fprintf(out, " | %s: %d", t, counts[t])
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&eventType, "type", event.AllTypes, "exact event type to show")
	return cmd
}

func (c *cli) eventsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the events you created and joined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			created, joined, err := c.state.MyEvents(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created (%d)\n", len(created))
			printEvents(out, created)
			fmt.Fprintf(out, "\nJoined (%d)\n", len(joined))
			printEvents(out, joined)
			return nil
		},
	}
}

func (c *cli) eventsCreateCmd() *cobra.Command {
	var (
		draft    event.Draft
		when     string
		capacity int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event; the address is geocoded unless --lat and --lng are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.signedIn(ctx); err != nil {
				return err
			}

			date, err := time.Parse(time.RFC3339, when)
			if err != nil {
				return fmt.Errorf("--at must be RFC 3339, e.g. 2026-05-02T06:30:00+05:30: %w", err)
			}
			draft.EventDate = date
			if cmd.Flags().Changed("capacity") {
				draft.Capacity = &capacity
			}

			field := client.NewLocationField(c.state.API(), nil)
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				lat, _ := cmd.Flags().GetFloat64("lat")
				lng, _ := cmd.Flags().GetFloat64("lng")
				draft.Location.Lat, draft.Location.Lng = &lat, &lng
			} else {
				if err := field.Select(ctx, geocodeSuggestion(draft.Location.Address)); err != nil {
					return fmt.Errorf("%s: %w", field.Warning(), err)
				}
				draft.Location = field.Value()
			}

			created, err := c.state.CreateEvent(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\nDirections: %s\n",
				created.Descriptor.Icon, created.ID, created.DirectionsURL)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "event title")
	f.StringVar(&draft.Description, "description", "", "event description")
	f.StringVar(&draft.EventType, "type", "", "event type, free text (e.g. Hiking)")
	f.StringVar(&draft.Location.Address, "address", "", "meeting point address")
	f.Float64("lat", 0, "latitude, skips geocoding together with --lng")
	f.Float64("lng", 0, "longitude, skips geocoding together with --lat")
	f.StringVar(&when, "at", "", "start time, RFC 3339")
	f.IntVar(&capacity, "capacity", 0, "maximum participants")
	return cmd
}

func (c *cli) membershipCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " EVENT_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.signedIn(ctx); err != nil {
				return err
			}

			var (
				ev  client.Event
				err error
			)
			if action == "join" {
				ev, err = c.state.Join(ctx, args[0])
			} else {
				ev, err = c.state.Leave(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", action, ev.Title, spots(ev))
			return nil
		},
	}
}

func (c *cli) eventsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event you created, with its chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			if err := c.state.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}
}

func spots(e client.Event) string {
	if e.SpotsLeft == nil {
		return strconv.Itoa(e.ParticipantCount) + " going"
	}
	return fmt.Sprintf("%d going, %d left", e.ParticipantCount, *e.SpotsLeft)
}

func printEvents(w io.Writer, events []client.Event) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tWHEN\tWHERE\tSPOTS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Descriptor.Icon, e.Descriptor.Label,
			e.Title,
			e.EventDate.Local().Format("Mon 02 Jan 15:04"),
			e.Location.Address,
			spots(e),
		)
	}
	tw.Flush()
}
