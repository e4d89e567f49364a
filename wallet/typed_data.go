package wallet

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TypedData is an EIP-712 typed data document.
type TypedData = apitypes.TypedData

// ParseTypedData decodes the JSON form of an EIP-712 document, as sent with
// eth_signTypedData_v4.
func ParseTypedData(payload string) (TypedData, error) {
	var td TypedData
	if err := json.Unmarshal([]byte(payload), &td); err != nil {
		return TypedData{}, fmt.Errorf("failed to decode typed data: %w", err)
	}
	if td.PrimaryType == "" {
		return TypedData{}, errors.New("typed data has no primary type")
	}

	return td, nil
}

// HashTypedData returns the EIP-712 digest signed by eth_signTypedData_v4.
func HashTypedData(td TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	return hash, nil
}

// RecoverTypedDataSigner returns the address which produced signature over the typed data
// document payload. signature is the 65 byte hex string returned by eth_signTypedData_v4.
func RecoverTypedDataSigner(payload string, signature string) (common.Address, error) {
	td, err := ParseTypedData(payload)
	if err != nil {
		return common.Address{}, err
	}

	hash, err := HashTypedData(td)
	if err != nil {
		return common.Address{}, err
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyTypedDataSignature reports whether signature over payload was produced by address.
func VerifyTypedDataSignature(payload, signature, address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("invalid address %q", address)
	}

	signer, err := RecoverTypedDataSigner(payload, signature)
	if err != nil {
		return false, err
	}

	return signer == common.HexToAddress(address), nil
}
