// Package ipfs stores task payloads on an IPFS node through its HTTP API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

const requestTimeout = 15 * time.Second

type Client struct {
	sh     *shell.Shell
	logger *zap.Logger
}

// New returns a client for the node API at url, e.g. "http://127.0.0.1:5001".
func New(url string, logger *zap.Logger) *Client {
	sh := shell.NewShell(url)
	sh.SetTimeout(requestTimeout)
	return &Client{sh: sh, logger: logger}
}

// StoreTask publishes the payload and returns its CID, or "" if the node failed.
func (c *Client) StoreTask(ctx context.Context, p model.TaskPayload) string {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Error("ipfs: encode payload", zap.Error(err))
		return ""
	}
	if ctx.Err() != nil {
		return ""
	}

	cid, err := c.sh.Add(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("ipfs: add failed", zap.Error(err))
		return ""
	}
	return cid
}

// RetrieveTask fetches a payload by CID; nil when it cannot be read.
func (c *Client) RetrieveTask(ctx context.Context, cid string) *model.TaskPayload {
	if cid == "" || ctx.Err() != nil {
		return nil
	}

	rc, err := c.sh.Cat(cid)
	if err != nil {
		c.logger.Warn("ipfs: cat failed", zap.String("cid", cid), zap.Error(err))
		return nil
	}
	defer rc.Close()

	var p model.TaskPayload
	if err := json.NewDecoder(rc).Decode(&p); err != nil {
		c.logger.Warn("ipfs: decode payload", zap.String("cid", cid), zap.Error(err))
		return nil
	}
	return &p
}
