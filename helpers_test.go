package simnet

// Shared test fixtures, in the same spirit as the teacher's mocks.go: small
// constructors for values exercised across several test files.

func sampleSIRMatrices() (G, S, E *SparseMatrix) {
	// Compartments: 0=S, 1=I, 2=R. Transitions: 0=infection (S->I), 1=recovery (I->R).
	var err error
	S, err = NewSparseMatrixFromEntries(3, 2,
		[]int{0, 1, 1, 2},
		[]int{0, 0, 1, 1},
		[]float64{-1, 1, -1, 1},
		[]string{"S", "I", "R"}, []string{"infection", "recovery"})
	if err != nil {
		panic(err)
	}
	G, err = NewSparseMatrixFromEntries(2, 2,
		[]int{0, 1, 0, 1},
		[]int{0, 0, 1, 1},
		[]float64{1, 1, 1, 1},
		nil, nil)
	if err != nil {
		panic(err)
	}
	E, err = NewSparseMatrixFromEntries(3, 3,
		[]int{0, 1, 2},
		[]int{0, 1, 2},
		[]float64{1, 1, 1},
		[]string{"S", "I", "R"}, []string{"select_S", "select_I", "select_R"})
	if err != nil {
		panic(err)
	}
	return G, S, E
}

func samplePropensities(beta, gamma float64, totalPop float64) []Propensity {
	inf, err := SIRInfectionPropensity(beta, 0, 1, totalPop)
	if err != nil {
		panic(err)
	}
	rec, err := SIRRecoveryPropensity(gamma, 1)
	if err != nil {
		panic(err)
	}
	return []Propensity{inf, rec}
}

func sampleModelConfig() ModelConfig {
	G, S, E := sampleSIRMatrices()
	return ModelConfig{
		G: G, S: S, E: E,
		U0:           []int{99, 1, 0},
		Nc:           3,
		Nn:           1,
		Tspan:        []float64{0, 1, 2, 3, 4, 5},
		Propensities: samplePropensities(0.3, 0.1, 100),
		Seed:         42,
		NThreads:     1,
	}
}
