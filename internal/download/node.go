package download

import (
	"context"
	"fmt"
	"io"

	shell "github.com/ipfs/go-ipfs-api"
)

// NodeFetcher retrieves content-addressed bytes from a local IPFS node.
type NodeFetcher interface {
	Fetch(ctx context.Context, cidPath string) (io.ReadCloser, error)
}

// NodeClient talks to an IPFS node's HTTP API.
type NodeClient struct {
	shell *shell.Shell
}

// NewNodeClient connects to the node API at the given multiaddr or host:port.
func NewNodeClient(nodeURL string) *NodeClient {
	return &NodeClient{shell: shell.NewShell(nodeURL)}
}

// Fetch streams the content behind an "<cid>[/subpath]" reference.
func (n *NodeClient) Fetch(ctx context.Context, cidPath string) (io.ReadCloser, error) {
	resp, err := n.shell.Request("cat", cidPath).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("ipfs node cat %s: %w", cidPath, err)
	}
	if resp.Error != nil {
		_ = resp.Close()
		return nil, fmt.Errorf("ipfs node cat %s: %w", cidPath, resp.Error)
	}
	return resp.Output, nil
}
