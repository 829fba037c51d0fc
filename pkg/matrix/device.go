package matrix

// DeviceMatrix is the stamping surface handed to components. Entries
// at the same coordinate accumulate additively.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}
