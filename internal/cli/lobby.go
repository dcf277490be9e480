package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

const presenceEvent = "presence-update"

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "List players who are online",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LobbyResult
			if err := client.Get(cmd.Context(), "/api/v1/lobby", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newLobbyWatchCmd())

	return cmd
}

func newLobbyWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream lobby presence changes (Ctrl+C to stop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resp, err := client.OpenEvents(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if cfg.Verbose {
				out.PrintMessage(fmt.Sprintf("Watching %s/lobby/events", cfg.ServerURL))
			}

			err = readPresence(ctx, resp.Body, func(u PresenceUpdate) {
				out.Print(u)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// readPresence consumes an SSE stream and reports each presence-update event.
// The server already leaves the viewer out of the list.
func readPresence(ctx context.Context, r io.Reader, fn func(PresenceUpdate)) error {
	scanner := bufio.NewScanner(r)
	var event string
	var data []string

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()

		switch {
		case line == "":
			if event == presenceEvent {
				update, err := parsePresence(strings.Join(data, "\n"))
				if err != nil {
					return err
				}
				fn(update)
			}
			event, data = "", nil
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	return nil
}

// parsePresence extracts usernames from the rendered online list
func parsePresence(fragment string) (PresenceUpdate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<ul>" + fragment + "</ul>"))
	if err != nil {
		return PresenceUpdate{}, fmt.Errorf("parse presence: %w", err)
	}

	update := PresenceUpdate{Time: time.Now(), Players: []string{}}
	doc.Find("li[data-user-id]").Each(func(_ int, s *goquery.Selection) {
		update.Players = append(update.Players, strings.TrimSpace(s.Find(".username").Text()))
	})
	return update, nil
}
