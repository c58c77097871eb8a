package reader

import (
	"strconv"
	"strings"

	"github.com/archana8teenth/compound-risk-scoring/models"
)

// Compound V2 core contracts on mainnet.
var compoundV2Contracts = map[string]string{
	"comptroller": "0x3d9819210a31b4961b30ef54be2aed79b9c9cd3b",
	"ceth":        "0x4ddc2d193948926d02f9b1fe9e1daa0718270ed5",
	"cdai":        "0x5d3a536e4d6dbd6114cc1ead35777bab948e3643",
	"cusdc":       "0x39aa39c021dfbae8fac545936693ac917d5e7563",
	"cwbtc":       "0xc11b1268c1a384e55c48c2391d8d480264a3a7f4",
}

// Compound V3 comets.
var compoundV3Contracts = map[string]string{
	"cusdc_v3": "0xc3d688b66703497daa19211eedff47f25384cae7",
	"ceth_v3":  "0xa17581a9e3356d9a858b789d68b4d866e593ae94",
}

// methodSignatures maps 4-byte selectors to protocol actions.
var methodSignatures = map[string]string{
	"0xa0712d68": "mint",
	"0x1249c58b": "mint",
	"0x6c540baf": "mint",
	"0xdb006a75": "redeem",
	"0x852a12e3": "redeemUnderlying",
	"0xc5ebeaec": "borrow",
	"0x0e752702": "repayBorrow",
	"0x4e4d9fea": "repayBorrow",
	"0x2608f818": "repayBorrowBehalf",
	"0x47ef3b3b": "liquidateBorrow",
	"0x317b0b77": "enterMarkets",
	"0xede4edd0": "exitMarket",
}

func protocolAddresses() map[string]struct{} {
	set := make(map[string]struct{}, len(compoundV2Contracts)+len(compoundV3Contracts))
	for _, addr := range compoundV2Contracts {
		set[strings.ToLower(addr)] = struct{}{}
	}
	for _, addr := range compoundV3Contracts {
		set[strings.ToLower(addr)] = struct{}{}
	}
	return set
}

// ClassifyAction resolves a transaction's protocol action from its input
// data selector. Selector misses fall back on the transferred value: a
// positive value is a plain ETH supply, anything else a generic interact.
func ClassifyAction(tx models.RawTransaction) string {
	input := tx.Input
	if input == "" || input == "0x" {
		return models.ActionUnknown
	}

	if len(input) >= 10 {
		if action, ok := methodSignatures[strings.ToLower(input[:10])]; ok {
			return action
		}
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(tx.Value), 64); err == nil && v > 0 {
		return "supply_eth"
	}
	return "interact"
}

// FilterProtocolTransactions keeps the transactions that touch a protocol
// contract and labels each with its classified action.
func FilterProtocolTransactions(txs []models.RawTransaction) []models.RawTransaction {
	contracts := protocolAddresses()

	var kept []models.RawTransaction
	for _, tx := range txs {
		_, to := contracts[strings.ToLower(tx.To)]
		_, from := contracts[strings.ToLower(tx.From)]
		_, contract := contracts[strings.ToLower(tx.ContractAddress)]
		if !to && !from && !contract {
			continue
		}
		tx.Action = ClassifyAction(tx)
		kept = append(kept, tx)
	}
	return kept
}
