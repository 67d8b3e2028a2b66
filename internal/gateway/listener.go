package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
)

// Applier receives payment status changes reported by the contract, together
// with the amount in cents the contract settled.
type Applier interface {
	ApplyGatewayEvent(ctx context.Context, jobID uuid.UUID, status models.PaymentStatus, amountCents int64) error
}

type Listener struct {
	client      *ethclient.Client
	rpcURL      string
	contractABI abi.ABI
	filterQuery ethereum.FilterQuery
	applier     Applier
	stopChan    chan struct{}
	wg          sync.WaitGroup
	logger      *log.Logger
}

func newListener(contractABI abi.ABI, contractAddr common.Address, applier Applier) *Listener {
	return &Listener{
		contractABI: contractABI,
		filterQuery: ethereum.FilterQuery{
			Addresses: []common.Address{contractAddr},
			Topics: [][]common.Hash{{
				contractABI.Events[EventReleased].ID,
				contractABI.Events[EventCancelled].ID,
			}},
		},
		applier:  applier,
		stopChan: make(chan struct{}),
		logger:   log.New(os.Stdout, "[Gateway] ", log.LstdFlags|log.Lshortfile),
	}
}

// NewListener connects to the node and prepares the escrow event subscription.
func NewListener(cfg config.GatewayConfig, applier Applier) (*Listener, error) {
	contractABI, err := LoadABI(cfg.ContractABIPath)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid escrow contract address %q", cfg.ContractAddress)
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum client at %s: %w", cfg.RPCURL, err)
	}

	l := newListener(contractABI, common.HexToAddress(cfg.ContractAddress), applier)
	l.client = client
	l.rpcURL = cfg.RPCURL
	l.logger.Printf("Connected to Ethereum node: %s, escrow contract %s", cfg.RPCURL, cfg.ContractAddress)
	return l, nil
}

// Start begins listening for events in a separate goroutine.
func (l *Listener) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.listenLoop(ctx)
}

// Stop signals the listener to shut down and waits for it to complete.
func (l *Listener) Stop() {
	close(l.stopChan)
	l.wg.Wait()
	if l.client != nil {
		l.client.Close()
	}
	l.logger.Printf("Event listener stopped.")
}

func (l *Listener) subscribe(ctx context.Context) (ethereum.Subscription, chan types.Log, error) {
	if l.client == nil {
		client, err := ethclient.DialContext(ctx, l.rpcURL)
		if err != nil {
			return nil, nil, fmt.Errorf("reconnection failed: %w", err)
		}
		l.client = client
		l.logger.Println("Reconnected to Ethereum node.")
	}
	logs := make(chan types.Log, 10)
	sub, err := l.client.SubscribeFilterLogs(ctx, l.filterQuery, logs)
	if err != nil {
		l.client.Close()
		l.client = nil
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	l.logger.Printf("Subscription active on %v", l.filterQuery.Addresses)
	return sub, logs, nil
}

// listenLoop is the subscription loop with reconnection.
func (l *Listener) listenLoop(ctx context.Context) {
	defer l.wg.Done()

	const reconnectDelay = 5 * time.Second
	var (
		sub  ethereum.Subscription
		logs chan types.Log
		errc <-chan error
	)
	connect := func() {
		var err error
		sub, logs, err = l.subscribe(ctx)
		if err != nil {
			l.logger.Printf("ERROR: %v. Retrying after %v.", err, reconnectDelay)
			sub, logs, errc = nil, nil, nil
			return
		}
		errc = sub.Err()
	}
	connect()

	retry := time.NewTicker(reconnectDelay)
	defer retry.Stop()

	for {
		select {
		case <-l.stopChan:
			if sub != nil {
				sub.Unsubscribe()
			}
			return
		case <-ctx.Done():
			if sub != nil {
				sub.Unsubscribe()
			}
			return
		case err := <-errc:
			l.logger.Printf("ERROR: Subscription error: %v. Attempting to reconnect...", err)
			sub.Unsubscribe()
			if l.client != nil {
				l.client.Close()
			}
			l.client = nil
			sub, logs, errc = nil, nil, nil
		case <-retry.C:
			if sub == nil {
				connect()
			}
		case vLog := <-logs:
			l.handle(ctx, vLog)
		}
	}
}

// handle decodes a log and forwards the status change. Failures are logged; a
// replayed or out-of-order event never stops the loop.
func (l *Listener) handle(ctx context.Context, vLog types.Log) {
	if vLog.Removed {
		l.logger.Printf("WARN: Ignoring log removed by reorg: Block %d, Tx %s", vLog.BlockNumber, vLog.TxHash.Hex())
		return
	}
	ev, err := Decode(l.contractABI, vLog)
	if err != nil {
		l.logger.Printf("ERROR: Failed to decode log in Tx %s: %v", vLog.TxHash.Hex(), err)
		return
	}
	l.logger.Printf("Received %s for job %s (Block %d, Tx %s)", ev.Name, ev.JobID, ev.BlockNumber, ev.TxHash.Hex())
	if !ev.AmountCents.IsInt64() {
		l.logger.Printf("ERROR: Amount %s in Tx %s is out of range", ev.AmountCents, ev.TxHash.Hex())
		return
	}

	applyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := l.applier.ApplyGatewayEvent(applyCtx, ev.JobID, ev.Status, ev.AmountCents.Int64()); err != nil {
		l.logger.Printf("ERROR: Applying %s for job %s: %v", ev.Name, ev.JobID, err)
	}
}
