// Package dynamo provides core simulation primitives shared by the process
// model and the run controller.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Metric] and [Observer]: per-step hooks used by the controller
//
// # Errors
//
// Validation failures wrap [ErrInvalidParameter]. A step that produces a
// non-finite value is reported as a [StepError] wrapping [ErrNumericAnomaly],
// so callers can use errors.Is on either.
package dynamo
