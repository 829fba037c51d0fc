package analysis

import (
	"fmt"

	"voltlab/pkg/circuit"
	"voltlab/pkg/device"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

// BaseAnalysis holds the result series shared by the concrete
// analyses. Keys are "V(id)" for node voltages, "I(name)" for
// auxiliary branch currents and "TIME" for the transient axis.
type BaseAnalysis struct {
	Circuit *circuit.Circuit
	results map[string][]float64
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

func (a *BaseAnalysis) append(key string, value float64) {
	a.results[key] = append(a.results[key], value)
}

// storeSolution records the present node voltages and branch
// currents.
func (a *BaseAnalysis) storeSolution() {
	solution := a.Circuit.Solution()

	for _, n := range a.Circuit.Nodes() {
		if n.ID == 0 {
			continue
		}
		a.append(fmt.Sprintf("V(%d)", n.ID), n.Voltage)
	}

	for _, comp := range a.Circuit.Components() {
		switch d := comp.(type) {
		case *device.VoltageSource:
			a.append(fmt.Sprintf("I(%s)", d.GetName()), d.BranchCurrent(solution))
		case *device.Transformer:
			a.append(fmt.Sprintf("I(%s)", d.GetName()), d.PrimaryCurrent(solution))
		}
	}
}
