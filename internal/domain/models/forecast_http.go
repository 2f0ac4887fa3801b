package models

// Requests for forecasting HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Metal  string `query:"metal" json:"metal" default:"gold" validate:"oneof=gold silver"`
	State  string `query:"state" json:"state" default:"Maharashtra" validate:"required"`
	City   string `query:"city" json:"city" default:"Mumbai" validate:"required"`
	Purity string `query:"purity" json:"purity" default:"22K" validate:"oneof=18K 22K 24K"`
	Unit   int    `query:"unit" json:"unit" default:"10" validate:"gte=1,lte=1000"`
}

type RetrainRequest struct {
	Metal   string `query:"metal" json:"metal" validate:"omitempty,oneof=gold silver"`
	Horizon int    `query:"horizon" json:"horizon" validate:"omitempty,gte=1,lte=3"`
	Async   bool   `query:"async" json:"async"`
}

type UnitsRequest struct {
	Metal string `query:"metal" json:"metal" default:"gold" validate:"oneof=gold silver"`
}
