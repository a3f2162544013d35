package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/client"
)

// geocodeSuggestion wraps a typed address as a suggestion without coordinates,
// so LocationField.Select runs one forward geocode on it.
func geocodeSuggestion(address string) geocode.Suggestion {
	return geocode.Suggestion{Description: strings.TrimSpace(address)}
}

func (c *cli) placesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "places",
		Short: "Search addresses and locate yourself",
	}
	cmd.AddCommand(c.placesSearchCmd(), c.placesGeocodeCmd(), c.placesHereCmd())
	return cmd
}

func (c *cli) placesSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY...",
		Short: "Address suggestions for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions, err := c.state.API().SearchPlaces(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range suggestions {
				coords := "-"
				if s.Lat != nil && s.Lng != nil {
					coords = fmt.Sprintf("%.4f,%.4f", *s.Lat, *s.Lng)
				}
				fmt.Fprintf(out, "%-24s %-20s %s\n", s.MainText, coords, s.SecondaryText)
			}
			return nil
		},
	}
}

func (c *cli) placesGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode ADDRESS...",
		Short: "Resolve an address to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := client.NewLocationField(c.state.API(), nil)
			if err := field.Select(cmd.Context(), geocodeSuggestion(strings.Join(args, " "))); err != nil {
				if w := field.Warning(); w != "" {
					return fmt.Errorf("%s", w)
				}
				return err
			}
			v := field.Value()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s,%s\n", v.Address,
				strconv.FormatFloat(*v.Lat, 'f', -1, 64), strconv.FormatFloat(*v.Lng, 'f', -1, 64))
			return nil
		},
	}
}

func (c *cli) placesHereCmd() *cobra.Command {
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "here",
		Short: "Resolve the map position from --lat/--lng, or fall back to the default city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc geo.Locator
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				loc = geo.StaticLocator{Lat: lat, Lng: lng}
			}

			state := client.NewState(c.state.API(), client.WithLocator(loc))
			a := state.RefreshLocation(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%.4f,%.4f", a.Coordinates.Lat, a.Coordinates.Lng)
			if a.City != "" {
				fmt.Fprintf(out, " (%s)", a.City)
			}
			if a.Fallback {
				fmt.Fprintf(out, " fallback: %v", a.Err)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "device latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "device longitude")
	return cmd
}

func (c *cli) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve EVENT_TYPE...",
		Short: "Show the icon, color and label an event type resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.state.API().ResolveEventType(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n", d.Icon, d.Label, d.Color, d.Gradient)
			return nil
		},
	}
}
