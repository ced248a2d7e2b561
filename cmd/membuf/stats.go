package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/membuf"
)

const statsTimeout = 5 * time.Second

func newStatsCommand() *cobra.Command {
	var (
		addr   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the stats of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), statsTimeout)
			defer cancel()

			stats, err := fetchStats(ctx, http.DefaultClient, addr)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&addr, "server", "http://localhost:8080", "base URL of the membuf server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

func fetchStats(ctx context.Context, client *http.Client, base string) (membuf.Stats, error) {
	var stats membuf.Stats

	url := strings.TrimSuffix(base, "/") + "/sys/membuf/stats"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return stats, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return stats, fmt.Errorf("fetching stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return stats, fmt.Errorf("fetching stats: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return stats, fmt.Errorf("decoding stats: %w", err)
	}
	return stats, nil
}

func printStats(w io.Writer, s membuf.Stats) error {
	fmt.Fprintf(w, "backend: %s\n", s.Backend)
	fmt.Fprintf(w, "active: %d/%d\n", s.ActiveCount, s.MaxResources)
	fmt.Fprintf(w, "default size: %d\n", s.DefaultSize)
	fmt.Fprintf(w, "open handles: %d\n", s.OpenHandles)
	if s.MemoryLimit > 0 {
		fmt.Fprintf(w, "allocated: %d/%d bytes\n", s.BytesAllocated, s.MemoryLimit)
	} else {
		fmt.Fprintf(w, "allocated: %d bytes\n", s.BytesAllocated)
	}

	if len(s.Resources) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nNAME\tSIZE\tGENERATION")
	for _, r := range s.Resources {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", r.Name, r.Size, r.Generation)
	}
	return tw.Flush()
}
