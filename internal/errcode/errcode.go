package errcode

// Error code convention:
// - 0: no error
// - 4xxx: recoverable business errors (the flow may continue)
// - 5xxx: system errors (the flow must stop)
const (
	OK              = 0
	ResourceMissing = 4004
	GenerationBusy  = 4009
	UpstreamLimited = 4029
	SystemError     = 5000
)
