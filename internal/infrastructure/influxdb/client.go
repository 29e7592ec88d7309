package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/rundown-core/internal/infrastructure/config"
)

// Batch settings used when the influxdb section leaves them unset.
const (
	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second

	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

var errNotReady = errors.New("server not ready")

// Client is the playout telemetry sink. Each point it writes is tagged with
// the station it was created for, so several studios can share a bucket.
//
// Writes never block the dispatcher: points go into the client's batch
// buffer and a background writer sends them. Rejected batches are reported
// to the callback set with SetOnError.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	station  string

	closed atomic.Bool

	errMu   sync.RWMutex
	onError func(err error)
}

// Connect opens the telemetry store and checks that it answers a ping.
//
// Parameters:
//   - cfg: influxdb section of the configuration
//   - station: station id written as the "station" tag of every point
//
// Returns:
//   - *Client: ready for WritePlayoutEvent and WriteActiveAudio
//   - error: ErrDisabled when telemetry is switched off, ErrUnreachable when
//     the server does not answer within the connect timeout
func Connect(cfg config.InfluxDBConfig, station string) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, cfg.URL, err)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		station:  station,
	}
	go c.forwardErrors(c.writeAPI.Errors())
	return c, nil
}

// writeOptions maps the batch settings onto client options. The flush
// interval is configured in seconds; the client takes milliseconds.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	flush := time.Duration(cfg.FlushInterval) * time.Second
	if flush <= 0 {
		flush = defaultFlushInterval
	}

	// #nosec G115 -- both values are positive
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batch)).
		SetFlushInterval(uint(flush.Milliseconds()))
}

func ping(ctx context.Context, client influxdb2.Client) error {
	ready, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return errNotReady
	}
	return nil
}

// forwardErrors hands rejected batches to the error callback until the
// write API is closed.
func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.errMu.RLock()
		callback := c.onError
		c.errMu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Close sends buffered points and releases the connection. Later writes are
// dropped. Closing twice is harmless.
func (c *Client) Close() error {
	if c == nil || c.client == nil || c.closed.Swap(true) {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server for the health endpoint.
//
// Parameters:
//   - ctx: bounds the ping together with the package ping timeout
//
// Returns:
//   - error: ErrNotConnected after Close, ErrUnreachable when the ping fails
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return nil
}

// IsConnected reports whether the client accepts writes.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && !c.closed.Load()
}

// SetOnError sets the callback for batches the server rejected.
func (c *Client) SetOnError(callback func(err error)) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.onError = callback
}
