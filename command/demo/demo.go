package demo

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tracebridge/config"
	"tracebridge/tracing"
)

// DemoCommand generates a few traces through the full pipeline: an
// instrumented sqlite database, an instrumented HTTP client talking to a
// loopback server, and a plain span. Everything the otel SDK sees flows
// through the bridge, so this doubles as a smoke test for the translation
// rules.
type DemoCommand struct {
	requests int
}

func NewDemoCommand() *DemoCommand {
	return &DemoCommand{}
}

func (c *DemoCommand) Synopsis() string {
	return "Generates demo traffic through the span bridge"
}

func (c *DemoCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("demo", pflag.ContinueOnError)
	flags.IntVar(&c.requests, "requests", 3, "number of demo traces to generate")
	return flags
}

func (c *DemoCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {

	db, err := otelsql.Open("sqlite3", cfg.DatabaseFile,
		otelsql.WithAttributes(attribute.String("db.system", "sqlite")),
	)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.DatabaseFile, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		return fmt.Errorf("preparing demo table: %w", err)
	}

	server, serverURL, err := startLoopbackServer()
	if err != nil {
		return err
	}
	defer server.Close()

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   5 * time.Second,
	}

	tr := otel.Tracer("tracebridge/demo")

	for i := range c.requests {
		if err := ctx.Err(); err != nil {
			return err
		}

		// each iteration is its own trace root, so each produces one
		// transaction
		traceCtx, root := tr.Start(context.Background(), fmt.Sprintf("demo-trace-%d", i))

		if err := runQueries(traceCtx, db, i); err != nil {
			tracing.Error(root, err)
			root.End()
			return err
		}

		if err := runRequest(traceCtx, client, serverURL); err != nil {
			tracing.Error(root, err)
			root.End()
			return err
		}

		_, work := tr.Start(traceCtx, "compute-thumbnail")
		work.End()

		root.End()
	}

	return nil
}

func runQueries(ctx context.Context, db *sql.DB, i int) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", fmt.Sprintf("item-%d", i)); err != nil {
		return fmt.Errorf("inserting demo row: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return fmt.Errorf("counting demo rows: %w", err)
	}

	return nil
}

func runRequest(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("demo request: %w", err)
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
	return nil
}

func startLoopbackServer() (*http.Server, string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("starting demo server: %w", err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "ok")
		}),
	}
	go server.Serve(listener)

	return server, "http://" + listener.Addr().String(), nil
}
