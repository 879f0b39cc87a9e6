package rpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/sol-strategies/geth-launch-config/internal/constants"
	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

func logger() *log.Logger { return log.Default().WithPrefix("rpc") }

type Client struct {
	url string
	rpc *gethrpc.Client
}

// Dial creates a client for the JSON-RPC endpoint at url. HTTP endpoints are
// not contacted until the first call.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Client{url: url, rpc: c}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// ClientVersion returns the version string the node reports.
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.rpc.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", fmt.Errorf("web3_clientVersion: %w", err)
	}

	logger().Debug("got client version", "version", version)
	return version, nil
}

// BlockNumber returns the number of the node's most recent block.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var number hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &number, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}

	logger().Debug("got block number", "number", uint64(number))
	return uint64(number), nil
}

// WaitReady polls the node every interval until it answers or ctx ends.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) (string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		version, err := c.ClientVersion(ctx)
		if err == nil {
			return version, nil
		}
		logger().Debug("node not ready yet", "url", c.url, "error", err)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %s: %w", c.url, ctx.Err())
		case <-ticker.C:
		}
	}
}

// EndpointFor returns the HTTP-RPC URL geth will serve with opts, and false
// when the HTTP-RPC server is not enabled.
func EndpointFor(opts *gethconfig.LaunchOptions) (string, bool) {
	if opts.RPCEnabled == nil || !*opts.RPCEnabled {
		return "", false
	}

	addr := constants.DefaultRPCAddr
	if opts.RPCAddr != nil && *opts.RPCAddr != "" && *opts.RPCAddr != "0.0.0.0" {
		addr = *opts.RPCAddr
	}
	port := constants.DefaultRPCPort
	if opts.RPCPort != nil && *opts.RPCPort != "" {
		port = *opts.RPCPort
	}
	return "http://" + net.JoinHostPort(addr, port), true
}
