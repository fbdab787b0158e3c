package deployment

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gasagency/gasagency-deployments/network"
)

// Record describes a contract instance deployed and confirmed by the orchestrator.
type Record struct {
	Contract      string            `json:"contract"`
	NetworkID     network.NetworkID `json:"networkId"`
	Network       string            `json:"network"`
	Address       common.Address    `json:"address"`
	TxHash        common.Hash       `json:"transactionHash"`
	BlockNumber   uint64            `json:"blockNumber"`
	Confirmations uint64            `json:"confirmations"`
	Deployer      common.Address    `json:"deployer"`
	Args          []any             `json:"args"`
	// ReportID identifies the operation report of the deployment run.
	ReportID   string    `json:"reportId"`
	DeployedAt time.Time `json:"deployedAt"`
}
