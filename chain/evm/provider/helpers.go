package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/gasagency/gasagency-deployments/network"
)

// ContractCaller is the subset of the client used to replay a failed transaction.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// revertError builds the error returned for a mined transaction with a failed status. The
// transaction is replayed at its block to recover the revert reason.
func revertError(
	ctx context.Context,
	caller ContractCaller,
	id network.NetworkID,
	from common.Address,
	tx *types.Transaction,
	receipt *types.Receipt,
) error {
	reason, err := getErrorReasonFromTx(ctx, caller, from, tx, receipt)
	if err == nil && reason != "" {
		return fmt.Errorf("tx %s reverted on network %d: %s", tx.Hash().Hex(), uint64(id), reason)
	}

	return fmt.Errorf("tx %s reverted on network %d, could not decode error reason", tx.Hash().Hex(), uint64(id))
}

// getErrorReasonFromTx replays tx with CallContract at the receipt's block and extracts the
// revert reason from the returned error.
func getErrorReasonFromTx(
	ctx context.Context,
	caller ContractCaller,
	from common.Address,
	tx *types.Transaction,
	receipt *types.Receipt,
) (string, error) {
	call := ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Data:     tx.Data(),
		Value:    tx.Value(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
	}

	_, err := caller.CallContract(ctx, call, receipt.BlockNumber)
	if err == nil {
		return "", fmt.Errorf("tx %s reverted with no reason", tx.Hash().Hex())
	}

	if reason, perr := getJSONErrorData(err); perr == nil && reason != "" {
		return reason, nil
	}

	return err.Error(), nil
}

// getJSONErrorData extracts the data of a JSON-RPC error.
func getJSONErrorData(err error) (string, error) {
	if err == nil {
		return "", errors.New("cannot parse nil error")
	}

	// go-ethereum's jsonError is unexported, so match it by behaviour.
	type jsonError interface {
		Error() string
		ErrorCode() int
		ErrorData() any
	}

	var jerr jsonError
	if !errors.As(err, &jerr) {
		return "", fmt.Errorf("error must be of type jsonError: %w", err)
	}

	if data := jerr.ErrorData(); data == nil || data == "" {
		if strings.Contains(jerr.Error(), "missing trie node") {
			return "", errors.New("missing trie node, likely due to not using an archive node")
		}

		return jerr.Error(), nil
	}

	return fmt.Sprintf("%s: %v", jerr.Error(), jerr.ErrorData()), nil
}
