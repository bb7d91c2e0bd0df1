package simnet

import "fmt"

// Built-in template propensities. The model-authoring surface proper
// (SIR/SEIR/SISe template models with named compartments) is out of scope
// per spec.md §1; these are the minimal mass-action building blocks needed
// to exercise the engine end-to-end without a caller-supplied C/JIT
// propensity path, in the same spirit as the teacher's named fitness-model
// constructors (NeutralAdditiveFM, NeutralMultiplicativeFM, etc.) that
// return a ready-to-use model from a few numeric parameters.

// MassActionPropensity returns a Propensity computing
// rateConstant * product(u[c] for c in reactants), the standard law-of-mass-action
// rate for a reaction consuming the given compartments. A rateConstant < 0
// is rejected at construction, mirroring the teacher's constructor-time
// parameter validation (e.g. NewSpreader rejecting p < 0).
func MassActionPropensity(rateConstant float64, reactants ...int) (Propensity, error) {
	if rateConstant < 0 {
		return nil, newSimErrorf(KindInvalidInput, InvalidFloatParameterError, "rate constant", rateConstant, "rateConstant < 0")
	}
	for _, c := range reactants {
		if c < 0 {
			return nil, newSimErrorf(KindInvalidInput, "reactant compartment index %d is negative", c)
		}
	}
	rs := append([]int(nil), reactants...)
	return PropensityFunc(func(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64 {
		rate := rateConstant
		for _, c := range rs {
			rate *= float64(u[c])
		}
		return rate
	}), nil
}

// MassActionWithModifierPropensity is like MassActionPropensity but takes
// its rate constant from gdata[modifierIndex] at evaluation time, e.g. a
// shared transmission coefficient beta stored once in gdata rather than
// duplicated per node.
func MassActionWithModifierPropensity(modifierIndex int, reactants ...int) (Propensity, error) {
	if modifierIndex < 0 {
		return nil, newSimErrorf(KindInvalidInput, "modifier index %d is negative", modifierIndex)
	}
	rs := append([]int(nil), reactants...)
	return PropensityFunc(func(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64 {
		if modifierIndex >= len(gdata) {
			panic(fmt.Sprintf("simnet: modifier index %d out of range for gdata of length %d", modifierIndex, len(gdata)))
		}
		rate := gdata[modifierIndex]
		for _, c := range rs {
			rate *= float64(u[c])
		}
		return rate
	}), nil
}

// SIRInfectionPropensity returns beta*S*I/N, the frequency-dependent SIR
// infection term, where sIdx/iIdx are the susceptible/infected compartment
// indices and totalPop is the (constant) node population used as the
// normalizing denominator.
func SIRInfectionPropensity(beta float64, sIdx, iIdx int, totalPop float64) (Propensity, error) {
	if beta < 0 {
		return nil, newSimErrorf(KindInvalidInput, InvalidFloatParameterError, "beta", beta, "beta < 0")
	}
	if totalPop <= 0 {
		return nil, newSimErrorf(KindInvalidInput, InvalidFloatParameterError, "totalPop", totalPop, "totalPop <= 0")
	}
	return PropensityFunc(func(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64 {
		return beta * float64(u[sIdx]) * float64(u[iIdx]) / totalPop
	}), nil
}

// SIRRecoveryPropensity returns gamma*I, the SIR recovery term.
func SIRRecoveryPropensity(gamma float64, iIdx int) (Propensity, error) {
	if gamma < 0 {
		return nil, newSimErrorf(KindInvalidInput, InvalidFloatParameterError, "gamma", gamma, "gamma < 0")
	}
	return PropensityFunc(func(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64 {
		return gamma * float64(u[iIdx])
	}), nil
}
