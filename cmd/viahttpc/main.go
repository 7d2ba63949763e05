// Command viahttpc is an example HTTP/1.x client built on pkg/viahttp; it
// issues one GET request to the given host:port and prints the response
// status and body.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watt-toolkit/viahttp/pkg/viahttp"
)

func main() {
	var (
		addr string
		path string
		host string
	)

	root := &cobra.Command{
		Use:   "viahttpc",
		Short: "Example HTTP/1.x client built on viahttp",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := viahttp.NewLogger(false)
			defer log.Sync()

			cfg := viahttp.DefaultClientConfig()
			cl := viahttp.NewClient(cfg, viahttp.ClientConnectionCallbacks{
				OnInvalidResponse: func(cc *viahttp.ClientConnection, err error) {
					log.Sugar().Errorf("invalid response: %v", err)
				},
			}, log)

			cc, err := cl.Connect(context.Background(), "tcp", addr)
			if err != nil {
				return err
			}
			defer cc.Close()

			req := viahttp.NewTxRequest("GET", path)
			req.AddHeader(viahttp.HeaderHost, host)
			req.AddHeader(viahttp.HeaderUserAgent, "viahttpc")
			req.AddHeader(viahttp.HeaderConnection, "close")
			msg, err := req.Message(0)
			if err != nil {
				return err
			}
			if err := cc.SendRequest(msg); err != nil {
				return err
			}

			outcome, err := cc.ReadResponse(false)
			if err != nil {
				return err
			}
			if outcome != viahttp.Valid {
				return fmt.Errorf("unexpected outcome %v", outcome)
			}

			fmt.Printf("status: %d %s\n", cc.Response().Status(), cc.Response().Reason())
			fmt.Printf("body: %s\n", cc.Response().Body())
			return nil
		},
	}

	root.Flags().StringVarP(&addr, "addr", "a", "localhost:8080", "host:port to connect to")
	root.Flags().StringVarP(&path, "path", "p", "/", "request path")
	root.Flags().StringVar(&host, "host", "localhost", "Host header value")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
