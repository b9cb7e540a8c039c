package opt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is returned when vehicle count, capacity, tenure or
	// iteration budget are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedInstance is returned when the site list does not describe
	// exactly one depot plus clients with non-negative demand.
	ErrMalformedInstance = errors.New("malformed instance")
	// ErrInfeasibleClient is reported when a client cannot be placed on any
	// vehicle. It is only fatal for strict runs.
	ErrInfeasibleClient = errors.New("infeasible client")
)

// Unassigned describes a client the builder could not place.
type Unassigned struct {
	ClientID string  `json:"clientId"`
	Demand   float64 `json:"demand"`
	Reason   string  `json:"reason"`
}

const (
	ReasonDemandExceedsCapacity = "demand exceeds capacity"
	ReasonFleetExhausted        = "fleet capacity exhausted"
)

// InfeasibleError is returned by strict runs that leave clients unplaced.
type InfeasibleError struct {
	Clients []Unassigned
}

func (e *InfeasibleError) Error() string {
	ids := make([]string, len(e.Clients))
	for i, c := range e.Clients {
		ids[i] = c.ClientID
	}
	return fmt.Sprintf("%s: %d client(s) could not be placed: %s", ErrInfeasibleClient, len(e.Clients), strings.Join(ids, ", "))
}

// Unwrap lets errors.Is match ErrInfeasibleClient.
func (e *InfeasibleError) Unwrap() error { return ErrInfeasibleClient }

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func instanceError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInstance, fmt.Sprintf(format, args...))
}
