package aggregate

import (
	"sales-dashboard/internal/storage"
)

type FunnelStage struct {
	State  storage.State `json:"state"`
	Orders int           `json:"orders"`
}

// Funnel counts distinct orders per state in stage order. States without
// orders are left out.
func Funnel(facts []storage.OrderLineFact) []FunnelStage {
	orders := make(map[storage.State]map[int64]struct{})
	for _, f := range facts {
		if orders[f.State] == nil {
			orders[f.State] = make(map[int64]struct{})
		}
		orders[f.State][f.OrderID] = struct{}{}
	}

	stages := []FunnelStage{}
	for _, st := range storage.FunnelStages {
		if n := len(orders[st]); n > 0 {
			stages = append(stages, FunnelStage{State: st, Orders: n})
		}
	}
	return stages
}
