package provider

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func mustAddress(t *testing.T, s string) common.Address {
	t.Helper()

	require.True(t, common.IsHexAddress(s), "invalid address %q", s)

	return common.HexToAddress(s)
}
