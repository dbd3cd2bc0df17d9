package carousel

// Params configures the confirm affordance.
type Params struct {
	Text    string
	Visible bool
	Enabled bool
}

// ConfirmButton is the host-controlled primary action below the carousel.
// Availability checks report whether the host supports an operation at all.
type ConfirmButton interface {
	MountAvailable() bool
	Mount()
	IsMounted() bool
	ConfigureAvailable() bool
	Configure(Params)
	// OnClick registers fn and returns a func that removes it.
	OnClick(fn func()) (off func())
	Unmount()
}
