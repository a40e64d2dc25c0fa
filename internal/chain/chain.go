// Package chain anchors list and task creation on an Ethereum-compatible
// chain through the TaskManager contract.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const taskManagerABI = `[
	{"type":"function","name":"createList","stateMutability":"nonpayable",
	 "inputs":[{"name":"name","type":"string"},{"name":"description","type":"string"}],"outputs":[]},
	{"type":"function","name":"addTask","stateMutability":"nonpayable",
	 "inputs":[{"name":"listId","type":"uint256"},{"name":"title","type":"string"},{"name":"description","type":"string"}],"outputs":[]}
]`

const gasLimit = 3_000_000

var gasPrice = big.NewInt(20_000_000_000) // 20 gwei

type Config struct {
	URL        string
	Contract   string
	PrivateKey string // hex, без 0x
	ChainID    int64  // 0: спросить у узла
	Timeout    time.Duration
}

type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	timeout  time.Duration
	logger   *zap.Logger
}

func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("chain: invalid contract address %q", cfg.Contract)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: private key: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(taskManagerABI))
	if err != nil {
		return nil, fmt.Errorf("chain: abi: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.URL, err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = eth.ChainID(ctx); err != nil {
			eth.Close()
			return nil, fmt.Errorf("chain: chain id: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	address := common.HexToAddress(cfg.Contract)
	return &Client{
		eth:      eth,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
		key:      key,
		chainID:  chainID,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// CreateList submits createList and waits for it to be mined. Returns the
// transaction hash, or "" when anything along the way failed.
func (c *Client) CreateList(ctx context.Context, name, description string) string {
	return c.submit(ctx, "createList", name, description)
}

// AddTask submits addTask for a task created under listID.
func (c *Client) AddTask(ctx context.Context, listID int64, title, description string) string {
	return c.submit(ctx, "addTask", big.NewInt(listID), title, description)
}

func (c *Client) submit(ctx context.Context, method string, args ...interface{}) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		c.logger.Error("chain: transactor", zap.Error(err))
		return ""
	}
	opts.Context = ctx
	opts.GasLimit = gasLimit
	opts.GasPrice = gasPrice

	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		c.logger.Warn("chain: transaction not sent", zap.String("method", method), zap.Error(err))
		return ""
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		c.logger.Warn("chain: transaction not mined",
			zap.String("method", method),
			zap.String("tx", tx.Hash().Hex()),
			zap.Error(err),
		)
		return ""
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		c.logger.Warn("chain: transaction reverted",
			zap.String("method", method),
			zap.String("tx", tx.Hash().Hex()),
		)
		return ""
	}

	c.logger.Info("chain: transaction mined",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return tx.Hash().Hex()
}
