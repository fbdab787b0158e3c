package datastore

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/network"
)

// newTestRecord returns a record carrying the constructor args of a registry entry.
func newTestRecord(id network.NetworkID, contract string) deployment.Record {
	return deployment.Record{
		Contract:      contract,
		NetworkID:     id,
		Network:       id.String(),
		Address:       common.HexToAddress("0x00000000000000000000000000000000000000c1"),
		TxHash:        common.HexToHash("0xabc1"),
		BlockNumber:   10,
		Confirmations: 6,
		Deployer:      common.HexToAddress("0x00000000000000000000000000000000000000d1"),
		Args: []any{
			"0x7a1BaC17Ccc5b313516C5E16fb24f7659aA5ebed",
			"0x4b09e658ed251bcafeebbc69400383d49f344ace09b9576fe248bb02c003fe9f",
			uint64(1532),
			"500000",
			"0x4093a6dfc8DA488950cF12272c954EA708C432A2",
		},
		ReportID:   "0b5a2b6e-8a0e-4c1b-9d1c-3f8f7d6b2a10",
		DeployedAt: time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}

// wideArgs holds args whose Go types a store must keep across Save and Get.
var wideArgs = []any{
	uint64(1<<60 + 1),
	uint64(18446744073709551615),
	int64(-9007199254740993),
	1.5,
	true,
	"500000",
	[]any{uint64(9007199254740993), "lane"},
}
