package wallet

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// The backend has shipped the wallet balance under several envelope shapes
// over time, so the read is defensive: probe the known locations in order
// and take the first numeric hit. An absent balance reads as 0; this
// leniency is specific to the balance path and does not extend to topup or
// transaction responses.
var balancePaths = [][]string{
	{"metadata", "balance", "available"},
	{"metadata", "balance"},
	{"data", "balance", "available"},
	{"data", "balance"},
}

// ExtractBalance resolves the balance amount from a raw balance-lookup
// payload. A value that is present but negative or non-finite is a defect
// and fails loud rather than clamping; a value that is missing or
// non-numeric at one location just moves the probe to the next.
func ExtractBalance(payload map[string]any) (int64, error) {
	for _, path := range balancePaths {
		value, ok := lookup(payload, path)
		if !ok {
			continue
		}
		amount, ok := toNumber(value)
		if !ok {
			continue
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return 0, fmt.Errorf("malformed balance at %s: %v", strings.Join(path, "."), value)
		}
		return int64(amount), nil
	}
	return 0, nil
}

func lookup(payload map[string]any, path []string) (any, bool) {
	var current any = payload
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// toNumber accepts JSON numbers plus numeric strings, which some backend
// serializers emit for large amounts. Booleans and structured values are
// not numbers.
func toNumber(value any) (float64, bool) {
	switch value.(type) {
	case nil, bool, map[string]any, []any:
		return 0, false
	}
	n, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
