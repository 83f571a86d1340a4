package syncer

import (
	"fmt"
	"math/big"
	"strings"

	"marketstate/core"
)

func argAddress(l *core.Log, name string) (string, error) {
	v, ok := l.Args[name]
	if !ok {
		return "", fmt.Errorf("%s: missing argument %s", l.Event, name)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %s is %T, not an address", l.Event, name, v)
	}

	return strings.ToLower(s), nil
}

func argUint(l *core.Log, name string) (*big.Int, error) {
	v, ok := l.Args[name]
	if !ok {
		return nil, fmt.Errorf("%s: missing argument %s", l.Event, name)
	}

	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("%s: argument %s is %T, not an integer", l.Event, name, v)
	}

	return n, nil
}

// extraData event arguments as the transaction payload
func extraData(l *core.Log) core.TransactionExtraData {
	extra := core.NewTransactionExtra()
	for k, v := range l.Args {
		extra.Put(k, v)
	}

	return extra
}
