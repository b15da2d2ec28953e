package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flybot/models"
	"flybot/services/timex"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var noColor bool
	root := &cobra.Command{
		Use:          "timex",
		Short:        "Inspect travel date resolution",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.AddCommand(newResolveCmd(), newParseCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var (
		nowFlag string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "resolve TYPE:TIMEX[|TIMEX...]...",
		Short: "Resolve date tokens to a start and end date",
		Long: `Resolve a sequence of recognizer date tokens to the start and end dates
the booking dialog would use. Each argument is a token type (date, daterange
or duration) followed by its timex expressions separated by "|".

  timex resolve --now 2024-01-10 date:2024-03-05 duration:P2D`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}
			tokens, err := parseTokens(args)
			if err != nil {
				return err
			}
			start, end, err := timex.ResolveAt(tokens, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				return enc.Encode(map[string]string{"start": start, "end": end})
			}
			if start == "" && end == "" {
				color.New(color.FgYellow).Fprintln(out, "unrecognized token sequence")
				return nil
			}
			dateColor := color.New(color.FgGreen, color.Bold)
			fmt.Fprintf(out, "%s %s\n", dateColor.Sprint(start), dateColor.Sprint(end))
			return nil
		},
	}
	cmd.Flags().StringVar(&nowFlag, "now", "", "reference date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse TIMEX",
		Short: "Show the fields decoded from one timex expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := timex.Parse(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseTokens(args []string) ([]models.DateToken, error) {
	tokens := make([]models.DateToken, 0, len(args))
	for _, arg := range args {
		typ, exprs, ok := strings.Cut(arg, ":")
		if !ok || typ == "" || exprs == "" {
			return nil, fmt.Errorf("invalid token %q: expected TYPE:TIMEX", arg)
		}
		tokens = append(tokens, models.DateToken{Type: typ, Timex: strings.Split(exprs, "|")})
	}
	return tokens, nil
}
