package evm

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CoerceArgs converts loosely typed constructor arguments, such as hex strings and decimal
// strings, into the Go types the ABI encoder expects for inputs.
func CoerceArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", len(inputs), len(args))
	}

	out := make([]any, len(args))
	for i, in := range inputs {
		v, err := coerce(in.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, in.Type.String(), in.Name, err)
		}
		out[i] = v
	}

	return out, nil
}

func coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return coerceAddress(v)
	case abi.FixedBytesTy:
		return coerceFixedBytes(t, v)
	case abi.UintTy, abi.IntTy:
		return coerceInteger(t, v)
	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}

		return b, nil
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}

		return s, nil
	default:
		return nil, fmt.Errorf("unsupported constructor argument type %s", t.String())
	}
}

func coerceAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case string:
		if !common.IsHexAddress(a) {
			return common.Address{}, fmt.Errorf("invalid address %q", a)
		}

		return common.HexToAddress(a), nil
	default:
		return common.Address{}, fmt.Errorf("expected address, got %T", v)
	}
}

func coerceFixedBytes(t abi.Type, v any) (any, error) {
	var raw []byte
	switch b := v.(type) {
	case common.Hash:
		raw = b.Bytes()
	case []byte:
		raw = b
	case string:
		decoded, err := hexutil.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", b, err)
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("expected bytes%d, got %T", t.Size, v)
	}
	if len(raw) != t.Size {
		return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(raw))
	}

	// The encoder wants a [N]byte array, which can only be built through reflection.
	arr := reflect.New(t.GetType()).Elem()
	reflect.Copy(arr, reflect.ValueOf(raw))

	return arr.Interface(), nil
}

func coerceInteger(t abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}

	if !fits(t, n) {
		return nil, fmt.Errorf("%s overflows %s", n, t.String())
	}

	// Sizes with a native Go type are encoded from that type, the rest from *big.Int.
	switch t.GetType().Kind() {
	case reflect.Uint8:
		return uint8(n.Uint64()), nil
	case reflect.Uint16:
		return uint16(n.Uint64()), nil
	case reflect.Uint32:
		return uint32(n.Uint64()), nil
	case reflect.Uint64:
		return n.Uint64(), nil
	case reflect.Int8:
		return int8(n.Int64()), nil
	case reflect.Int16:
		return int16(n.Int64()), nil
	case reflect.Int32:
		return int32(n.Int64()), nil
	case reflect.Int64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}

func fits(t abi.Type, n *big.Int) bool {
	if t.T == abi.UintTy {
		return n.Sign() >= 0 && n.BitLen() <= t.Size
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	minimum := new(big.Int).Neg(limit)
	maximum := limit.Sub(limit, big.NewInt(1))

	return n.Cmp(minimum) >= 0 && n.Cmp(maximum) <= 0
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Int).Set(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}

		return big.NewInt(int64(n)), nil
	case string:
		s := strings.TrimSpace(n)
		base := 10
		if strings.HasPrefix(s, "0x") {
			s, base = s[2:], 16
		}
		b, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", n)
		}

		return b, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}
