package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	watchAddr   string
	watchWS     bool
	watchPretty bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream reload events (TCP sync server, or /ws with --ws)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		for {
			var err error
			if watchWS {
				var wsURL string
				if wsURL, err = newClient().websocketURL("/ws"); err != nil {
					return err
				}
				err = watchWebSocket(ctx, out, wsURL, watchPretty)
			} else {
				err = watchTCP(ctx, out, watchAddr, watchPretty)
			}
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[watch] disconnected: %v", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(1 * time.Second): // auto reconnect
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "127.0.0.1:7070", "TCP sync server address")
	watchCmd.Flags().BoolVar(&watchWS, "ws", false, "use the API's WebSocket endpoint instead of TCP")
	watchCmd.Flags().BoolVar(&watchPretty, "pretty", true, "pretty print JSON events")
	rootCmd.AddCommand(watchCmd)
}

// watchTCP prints events until the connection drops or ctx is done.
func watchTCP(ctx context.Context, out io.Writer, addr string, pretty bool) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	// unblocks Scan on cancel
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.Printf("[watch] connected to %s", addr)
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		printEvent(out, sc.Bytes(), pretty)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func watchWebSocket(ctx context.Context, out io.Writer, wsURL string, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		printEvent(out, msg, pretty)
	}
}

func printEvent(out io.Writer, line []byte, pretty bool) {
	if !pretty {
		fmt.Fprintln(out, string(line))
		return
	}
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		// not JSON? print raw
		fmt.Fprintln(out, string(line))
		return
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	fmt.Fprintln(out, string(b))
}
