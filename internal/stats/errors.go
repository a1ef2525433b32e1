package stats

// InputError indicates a caller-supplied parameter the engine cannot serve,
// such as an unknown ranking metric. Maps to a 400 at the HTTP layer, unlike
// schema problems in the underlying dataset.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }
