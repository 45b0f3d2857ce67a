package internal

// Stage names a middleware group.
type Stage string

const (
	PreRouting  Stage = "preRouting"
	PostRouting Stage = "postRouting"
)

func (s Stage) valid() bool {
	return s == PreRouting || s == PostRouting
}

// Signal is the result of running a stage.
type Signal int

const (
	// Continue means no chunk sent a response; the pipeline proceeds.
	Continue Signal = iota
	// Stop means a response was sent; nothing after it runs.
	Stop
)

func (s Signal) String() string {
	if s == Stop {
		return "stop"
	}
	return "continue"
}

// RunStage invokes chunks in order against c. After each chunk it checks
// whether a response was started; if so the response is ended and Stop is
// returned without running the remaining chunks. A chunk error stops the
// stage and is returned with Stop.
func RunStage(chunks []Middleware, c *Context) (Signal, error) {
	for _, chunk := range chunks {
		err := chunk(c)
		if c.Written() {
			c.res.End()
			return Stop, err
		}
		if err != nil {
			return Stop, err
		}
	}
	return Continue, nil
}
