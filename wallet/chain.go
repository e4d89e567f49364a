package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ParseChainID parses an EIP-155 chain id given either as a 0x-prefixed hex quantity, as
// returned by eth_chainId and chainChanged, or in decimal.
func ParseChainID(chainID string) (uint64, error) {
	if strings.HasPrefix(chainID, "0x") || strings.HasPrefix(chainID, "0X") {
		id, err := hexutil.DecodeUint64(strings.ToLower(chainID))
		if err != nil {
			return 0, fmt.Errorf("invalid chain id %q: %w", chainID, err)
		}

		return id, nil
	}

	id, err := strconv.ParseUint(chainID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", chainID, err)
	}

	return id, nil
}

// FormatChainID renders id as the hex quantity used on the EIP-1193 boundary.
func FormatChainID(id uint64) string {
	return hexutil.EncodeUint64(id)
}

// ChainName returns the chain-selectors name of the EVM chain identified by chainID.
func ChainName(chainID string) (string, error) {
	id, err := ParseChainID(chainID)
	if err != nil {
		return "", err
	}

	details, err := chainsel.GetChainDetailsByChainIDAndFamily(strconv.FormatUint(id, 10), chainsel.FamilyEVM)
	if err != nil {
		return "", fmt.Errorf("failed to get chain details for chain id %d: %w", id, err)
	}

	return details.ChainName, nil
}

// ChecksumAddress returns the EIP-55 form of addr, or false when addr is not a hex address.
func ChecksumAddress(addr string) (string, bool) {
	if !common.IsHexAddress(addr) {
		return "", false
	}

	return common.HexToAddress(addr).Hex(), true
}
