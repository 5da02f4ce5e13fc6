package rag

// Readiness is the explicit construction result of the engine: either a
// ready engine or a degraded-mode reason the boundary layer must report.
// There is no ambient singleton and no nullable global.
type Readiness struct {
	engine *Engine
	reason string
}

func Ready(e *Engine) Readiness {
	return Readiness{engine: e}
}

func Degraded(reason string) Readiness {
	return Readiness{reason: reason}
}

// Engine returns the engine and whether it is ready to serve.
func (r Readiness) Engine() (*Engine, bool) {
	return r.engine, r.engine != nil
}

func (r Readiness) Reason() string {
	return r.reason
}
