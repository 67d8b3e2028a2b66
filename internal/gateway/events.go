// Package gateway follows the escrow contract that holds job payments and reports
// releases and refunds back to the escrow service.
package gateway

import (
	_ "embed"
	"fmt"
	"math/big"
	"os"
	"strings"

	"freelance-marketplace/internal/models"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

const (
	EventReleased  = "EscrowReleased"
	EventCancelled = "EscrowCancelled"
)

//go:embed escrow_abi.json
var defaultABI string

// Event is a decoded escrow contract log.
type Event struct {
	Name        string
	JobID       uuid.UUID
	Status      models.PaymentStatus
	AmountCents *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// LoadABI parses the contract ABI at path, or the bundled one when path is empty.
func LoadABI(path string) (abi.ABI, error) {
	src := defaultABI
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("failed to read ABI file '%s': %w", path, err)
		}
		src = string(b)
	}
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	for _, name := range []string{EventReleased, EventCancelled} {
		if _, ok := parsed.Events[name]; !ok {
			return abi.ABI{}, fmt.Errorf("event '%s' not found in contract ABI", name)
		}
	}
	return parsed, nil
}

// JobTopic encodes a job ID as the bytes32 topic the contract indexes it under.
// The UUID occupies the low 16 bytes.
func JobTopic(id uuid.UUID) common.Hash {
	return common.BytesToHash(id[:])
}

func jobFromTopic(topic common.Hash) (uuid.UUID, error) {
	b := topic.Bytes()
	for _, x := range b[:16] {
		if x != 0 {
			return uuid.Nil, fmt.Errorf("topic %s is not a job id", topic.Hex())
		}
	}
	return uuid.FromBytes(b[16:])
}

// Decode unpacks an EscrowReleased or EscrowCancelled log.
func Decode(contractABI abi.ABI, vLog types.Log) (*Event, error) {
	if len(vLog.Topics) < 2 {
		return nil, fmt.Errorf("expected 2 topics, got %d", len(vLog.Topics))
	}
	eventABI, err := contractABI.EventByID(vLog.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("unknown event signature %s: %w", vLog.Topics[0].Hex(), err)
	}

	ev := &Event{Name: eventABI.Name, BlockNumber: vLog.BlockNumber, TxHash: vLog.TxHash}
	switch eventABI.Name {
	case EventReleased:
		ev.Status = models.PaymentStatusReleased
	case EventCancelled:
		ev.Status = models.PaymentStatusCancelled
	default:
		return nil, fmt.Errorf("unexpected event %s", eventABI.Name)
	}

	if ev.JobID, err = jobFromTopic(vLog.Topics[1]); err != nil {
		return nil, err
	}

	values, err := eventABI.Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s data: %w", eventABI.Name, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s log carries no amountCents", eventABI.Name)
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("amountCents has type %T, expected *big.Int", values[0])
	}
	ev.AmountCents = amount
	return ev, nil
}
