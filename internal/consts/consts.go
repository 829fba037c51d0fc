package consts

const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)

	Gmin = 1e-12 // Shunt conductance on every non-ground node diagonal

	DefaultConvergenceTol = 1e-6
	DefaultMaxIterations  = 50
)
