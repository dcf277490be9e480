package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Play rock-paper-scissors against the computer",
	}

	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGamePlayCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGameLiveCmd())

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show scores and round history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GamePayload
			if err := client.Get(cmd.Context(), "/api/v1/game", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newGamePlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "play <rock|paper|scissors>",
		Short:     "Play one round",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"rock", "paper", "scissors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GamePayload
			body := map[string]string{"choice": args[0]}
			if err := client.Post(cmd.Context(), "/api/v1/game/play", body, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero the scores and clear history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GamePayload
			if err := client.Post(cmd.Context(), "/api/v1/game/reset", nil, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newGameLiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Play rounds over a websocket session",
		Long: `Opens a live session and reads commands from stdin, one per line:

  rock | paper | scissors   play a round
  reset                     zero the scores
  quit                      close the session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conn, err := client.DialLive(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			frames := make(chan LiveFrame, 8)
			readErr := make(chan error, 1)
			go func() {
				defer close(frames)
				for {
					var f LiveFrame
					if err := conn.ReadJSON(&f); err != nil {
						readErr <- err
						return
					}
					frames <- f
				}
			}()

			// Initial state
			if err := awaitFrame(ctx, frames, readErr); err != nil {
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.ToLower(strings.TrimSpace(scanner.Text()))
				var msg map[string]string
				switch line {
				case "":
					continue
				case "quit", "exit":
					return closeLive(conn)
				case "reset":
					msg = map[string]string{"type": "reset"}
				default:
					msg = map[string]string{"type": "play", "choice": line}
				}

				if err := conn.WriteJSON(msg); err != nil {
					return fmt.Errorf("send: %w", err)
				}
				if err := awaitFrame(ctx, frames, readErr); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return closeLive(conn)
		},
	}
}

// awaitFrame prints the next server frame
func awaitFrame(ctx context.Context, frames <-chan LiveFrame, readErr <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f, ok := <-frames:
		if !ok {
			return fmt.Errorf("live session closed: %w", <-readErr)
		}
		out.Print(f)
		return nil
	}
}

func closeLive(conn *websocket.Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
