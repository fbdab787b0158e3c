package datastore

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// decodeArgs decodes JSON constructor args. Integers come back as uint64, or int64 when
// negative, so that a record reads back with the args it was saved with. Other numbers are
// float64.
func decodeArgs(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var args []any
	if err := dec.Decode(&args); err != nil {
		return nil, err
	}

	return normalizeArgs(args)
}

func normalizeArgs(args []any) ([]any, error) {
	for i, v := range args {
		n, err := normalizeArg(v)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}

	return args, nil
}

func normalizeArg(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return u, nil
		}
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i, nil
		}

		return t.Float64()
	case []any:
		return normalizeArgs(t)
	case map[string]any:
		for k, e := range t {
			n, err := normalizeArg(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}

		return t, nil
	default:
		return v, nil
	}
}
