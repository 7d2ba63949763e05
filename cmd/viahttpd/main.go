// Command viahttpd is an example HTTP/1.x server built on pkg/viahttp,
// demonstrating config loading via go-ucfg and CLI flags via cobra (spec
// §1A), and dispatching requests through pkg/viahttp/router rather than a
// single catch-all handler.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/elastic/go-ucfg/yaml"
	"github.com/spf13/cobra"

	"github.com/watt-toolkit/viahttp/pkg/viahttp"
	"github.com/watt-toolkit/viahttp/pkg/viahttp/router"
)

// routeHandler is the handler signature routes in newRouter are registered
// with; Router.Handle accepts any, so Match's result is asserted back to
// this type at dispatch time.
type routeHandler func(c *viahttp.Connection, rr *viahttp.RequestReceiver, params router.Params)

// newRouter builds the example server's routing table (spec §3A supplement:
// a small path/parameter matcher wired to a live caller, not just exercised
// by its own tests).
func newRouter() *router.Router {
	rt := router.New()
	rt.Handle("GET", "/", routeHandler(func(c *viahttp.Connection, rr *viahttp.RequestReceiver, _ router.Params) {
		writeEcho(c, rr)
	}))
	rt.Handle("GET", "/echo/*", routeHandler(func(c *viahttp.Connection, rr *viahttp.RequestReceiver, params router.Params) {
		writePlainText(c, 200, "OK", params["*"]+"\n")
	}))
	rt.Handle("GET", "/greet/:name", routeHandler(func(c *viahttp.Connection, rr *viahttp.RequestReceiver, params router.Params) {
		writePlainText(c, 200, "OK", fmt.Sprintf("hello, %s\n", params["name"]))
	}))
	return rt
}

func writeEcho(c *viahttp.Connection, rr *viahttp.RequestReceiver) {
	body := fmt.Sprintf("%s %s (%d body bytes)\n", rr.Method(), rr.URI(), len(rr.Body()))
	writePlainText(c, 200, "OK", body)
}

func writePlainText(c *viahttp.Connection, status int, reason, body string) {
	tx := viahttp.NewTxResponse(status, reason)
	tx.AddHeader(viahttp.HeaderContentType, "text/plain")
	msg, err := tx.Message(int64(len(body)))
	if err != nil {
		return
	}
	c.Send([]byte(msg))
	c.Send([]byte(body))
}

// routePath strips any query string from a request-URI before matching it
// against the router, which only matches path segments.
func routePath(uri []byte) string {
	path, _, _ := strings.Cut(string(uri), "?")
	return path
}

func loadConfig(path string) (viahttp.ServerConfig, error) {
	cfg := viahttp.DefaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := yaml.NewConfigWithFile(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	if err := raw.Unpack(&cfg); err != nil {
		return cfg, fmt.Errorf("unpacking config: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		addr       string
		configPath string
	)

	root := &cobra.Command{
		Use:   "viahttpd",
		Short: "Example HTTP/1.x server built on viahttp",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			log := viahttp.NewLogger(false)
			defer log.Sync()

			rt := newRouter()

			srv := viahttp.NewServer(cfg, viahttp.ServerConnectionCallbacks{
				OnRequest: func(c *viahttp.Connection, rr *viahttp.RequestReceiver) {
					if string(rr.Method()) == "TRACE" {
						writePlainText(c, 200, "OK", rr.TraceBody())
						return
					}

					handler, params, ok := rt.Match(string(rr.Method()), routePath(rr.URI()))
					if !ok {
						writePlainText(c, 404, "Not Found", "not found\n")
						return
					}
					handler.(routeHandler)(c, rr, params)
				},
				OnInvalid: func(c *viahttp.Connection, err error, status int) {
					tx := viahttp.NewTxResponse(status, "Bad Request")
					if msg, merr := tx.Message(0); merr == nil {
						c.Send([]byte(msg))
					}
				},
			}, log)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			defer ln.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.Sugar().Infof("listening on %s", addr)
			return srv.Serve(ctx, viahttp.NewListener(ln))
		},
	}

	root.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
