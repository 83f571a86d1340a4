// Package chaintest provides an in memory chain for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"marketstate/core"
)

// Chain map backed core.IChainReader and core.ILogSource.
//
// Values are keyed by contract, method and args and apply to every block unless a
// block specific value was set with SetAt.
type Chain struct {
	mu     sync.Mutex
	values map[string]interface{}
	logs   []*core.Log
	head   int64
	calls  map[string]int
}

// GenesisTime timestamp of block zero
const GenesisTime = 1500000000

// New empty chain
func New() *Chain {
	return &Chain{
		values: make(map[string]interface{}),
		calls:  make(map[string]int),
	}
}

func key(contract, method string, args []string) string {
	return strings.ToLower(fmt.Sprintf("%s.%s(%s)", contract, method, strings.Join(args, ",")))
}

func blockKey(k string, block int64) string {
	return fmt.Sprintf("%s@%d", k, block)
}

// Set value returned by contract.method(args...), value is *big.Int, int64, string or error
func (c *Chain) Set(contract, method string, value interface{}, args ...string) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key(contract, method, args)] = value
	return c
}

// SetAt like Set but only for block
func (c *Chain) SetAt(block int64, contract, method string, value interface{}, args ...string) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[blockKey(key(contract, method, args), block)] = value
	return c
}

// Revert make contract.method(args...) revert
func (c *Chain) Revert(contract, method string, args ...string) *Chain {
	return c.Set(contract, method, core.ErrCallReverted, args...)
}

// Calls number of calls made to contract.method(args...)
func (c *Chain) Calls(contract, method string, args ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[key(contract, method, args)]
}

// TotalCalls number of calls made
func (c *Chain) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *Chain) lookup(contract, method string, block int64, args []string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(contract, method, args)
	c.calls[k]++

	v, ok := c.values[blockKey(k, block)]
	if !ok {
		v, ok = c.values[k]
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w", k, core.ErrCallReverted)
	}

	if err, isErr := v.(error); isErr {
		return nil, fmt.Errorf("%s: %w", k, err)
	}

	return v, nil
}

// CallUint implements core.IChainReader
func (c *Chain) CallUint(ctx context.Context, contract, method string, block int64, args ...string) (*big.Int, error) {
	v, err := c.lookup(contract, method, block, args)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case *big.Int:
		return new(big.Int).Set(x), nil
	case int64:
		return big.NewInt(x), nil
	case int:
		return big.NewInt(int64(x)), nil
	case string:
		n, ok := new(big.Int).SetString(x, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", x)
		}
		return n, nil
	}

	return nil, fmt.Errorf("unexpected value %T", v)
}

// CallAddress implements core.IChainReader
func (c *Chain) CallAddress(ctx context.Context, contract, method string, block int64, args ...string) (string, error) {
	return c.CallString(ctx, contract, method, block, args...)
}

// CallString implements core.IChainReader
func (c *Chain) CallString(ctx context.Context, contract, method string, block int64, args ...string) (string, error) {
	v, err := c.lookup(contract, method, block, args)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected value %T", v)
	}

	return s, nil
}

// AddLogs append logs and move head to the last log block
func (c *Chain) AddLogs(logs ...*core.Log) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range logs {
		c.logs = append(c.logs, l)
		if l.Block > c.head {
			c.head = l.Block
		}
	}
}

// SetHead set the head block
func (c *Chain) SetHead(head int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = head
}

// Head implements core.ILogSource
func (c *Chain) Head(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.head, nil
}

// BlockTimestamp implements core.ILogSource, block b is at GenesisTime + b
func (c *Chain) BlockTimestamp(ctx context.Context, block int64) (int64, error) {
	return GenesisTime + block, nil
}

// Logs implements core.ILogSource, logs are returned in insertion order
func (c *Chain) Logs(ctx context.Context, contracts []string, from, to int64) ([]*core.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	watched := make(map[string]bool, len(contracts))
	for _, addr := range contracts {
		watched[strings.ToLower(addr)] = true
	}

	var logs []*core.Log
	for _, l := range c.logs {
		if l.Block < from || l.Block > to || !watched[strings.ToLower(l.Address)] {
			continue
		}
		logs = append(logs, l)
	}

	return logs, nil
}
