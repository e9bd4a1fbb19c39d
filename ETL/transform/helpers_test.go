package transform

import (
	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

func record(client, tb, managerID, managerName, fact string) models.ClientRecord {
	return models.ClientRecord{
		ClientID:    client,
		TB:          tb,
		ManagerID:   managerID,
		ManagerName: managerName,
		Fact:        decimal.RequireFromString(fact),
	}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestResolver(mode string) *ManagerResolver {
	cfg := config.GetConfig()
	cfg.Normalization.ManagerSelection = mode
	return NewManagerResolver(cfg, utils.NewNopLogger())
}

func newTestAssembler(mode string) *VariantAssembler {
	logger := utils.NewNopLogger()
	return NewVariantAssembler(NewAggregator(logger), newTestResolver(mode), logger)
}
