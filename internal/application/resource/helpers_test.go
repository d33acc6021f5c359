package resource

import (
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

// counterValue reads one counter series from the recorder's registry.
func counterValue(m *metrics.Recorder, name string, labels map[string]string) float64 {
	families, err := m.Registry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func sliceOps(m *metrics.Recorder, resource, op, outcome string) float64 {
	return counterValue(m, "retailctl_slice_operations_total", map[string]string{
		"resource": resource, "operation": op, "outcome": outcome,
	})
}

func staleDiscards(m *metrics.Recorder, resource string) float64 {
	return counterValue(m, "retailctl_stale_responses_discarded_total", map[string]string{"resource": resource})
}
