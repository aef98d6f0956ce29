package register_repo

import (
	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/storage/postgres"
)

// Transfers are stored once with both warehouses; each leg reads the table
// through its own warehouse column. A warehouse-scoped query then only sees
// the leg touching that warehouse, while a company-wide query sees both legs
// and they cancel out.

// NewTransferInSource reads the destination leg of inter-warehouse transfers.
func NewTransferInSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindTransferIn, transferTable, "dest_warehouse_id")
}

// NewTransferOutSource reads the source leg of inter-warehouse transfers.
func NewTransferOutSource(txm *postgres.TxManager) stock.Source {
	return newKindSource(txm, stock.KindTransferOut, transferTable, "source_warehouse_id")
}

// NewCombinedSource wires one source per movement kind into the reader the
// single-query resolver uses.
func NewCombinedSource(txm *postgres.TxManager) (*stock.CombinedSource, error) {
	return stock.NewCombinedSource(
		NewReceptionSource(txm),
		NewSaleSource(txm),
		NewOutboundSource(txm),
		NewTransferInSource(txm),
		NewTransferOutSource(txm),
		NewReturnSource(txm),
		NewAdjustmentSource(txm),
	)
}
