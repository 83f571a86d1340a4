// Package evm reads protocol contracts over the ethereum json rpc.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"marketstate/core"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend the subset of the ethereum rpc used by Client
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Dial connects to the rpc endpoint
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc endpoint required")
	}

	return ethclient.DialContext(ctx, trimmed)
}

// Client implements core.IChainReader and core.ILogSource
type Client struct {
	backend Backend
	abi     abi.ABI
	// block number -> timestamp
	timestamps gcache.Cache
}

// New new client over backend
func New(backend Backend) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(protocolABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}

	return &Client{
		backend:    backend,
		abi:        parsed,
		timestamps: gcache.New(4096).LRU().Build(),
	}, nil
}

var (
	_ core.IChainReader = (*Client)(nil)
	_ core.ILogSource   = (*Client)(nil)
)

func (c *Client) callRaw(ctx context.Context, contract, method string, block int64, args ...string) ([]byte, error) {
	params := make([]interface{}, len(args))
	for idx, arg := range args {
		if !common.IsHexAddress(arg) {
			return nil, fmt.Errorf("%s(%s): invalid address argument", method, arg)
		}
		params[idx] = common.HexToAddress(arg)
	}

	data, err := c.abi.Pack(method, params...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := common.HexToAddress(contract)
	var number *big.Int
	if block > 0 {
		number = big.NewInt(block)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, number)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%s.%s(): %v: %w", contract, method, err, core.ErrCallReverted)
		}

		return nil, fmt.Errorf("%s.%s(): %w", contract, method, err)
	}

	// no code at the address or a fallback that returns nothing
	if len(out) == 0 {
		return nil, fmt.Errorf("%s.%s(): empty output: %w", contract, method, core.ErrCallReverted)
	}

	return out, nil
}

func (c *Client) call(ctx context.Context, contract, method string, block int64, args ...string) ([]interface{}, error) {
	out, err := c.callRaw(ctx, contract, method, block, args...)
	if err != nil {
		return nil, err
	}

	return c.unpack(contract, method, out)
}

func (c *Client) unpack(contract, method string, out []byte) ([]interface{}, error) {
	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s.%s(): %w", contract, method, err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%s.%s(): no return value", contract, method)
	}

	return values, nil
}

// CallUint implements core.IChainReader
func (c *Client) CallUint(ctx context.Context, contract, method string, block int64, args ...string) (*big.Int, error) {
	values, err := c.call(ctx, contract, method, block, args...)
	if err != nil {
		return nil, err
	}

	switch v := values[0].(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return big.NewInt(int64(v)), nil
	}

	return nil, fmt.Errorf("%s.%s(): unexpected %T", contract, method, values[0])
}

// CallAddress implements core.IChainReader, the address is lower case hex
func (c *Client) CallAddress(ctx context.Context, contract, method string, block int64, args ...string) (string, error) {
	values, err := c.call(ctx, contract, method, block, args...)
	if err != nil {
		return "", err
	}

	addr, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("%s.%s(): unexpected %T", contract, method, values[0])
	}

	return strings.ToLower(addr.Hex()), nil
}

// CallString implements core.IChainReader.
//
// Some early tokens return bytes32 instead of string, those are decoded as a zero padded string.
func (c *Client) CallString(ctx context.Context, contract, method string, block int64, args ...string) (string, error) {
	out, err := c.callRaw(ctx, contract, method, block, args...)
	if err != nil {
		return "", err
	}

	if len(out) == 32 {
		return strings.TrimRight(string(out), "\x00"), nil
	}

	values, err := c.unpack(contract, method, out)
	if err != nil {
		return "", err
	}

	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%s.%s(): unexpected %T", contract, method, values[0])
	}

	return s, nil
}

func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "invalid opcode")
}
