package metric

import "fmt"

// DecodeError is returned when a wire value cannot be interpreted under a
// metric's declared datatype (§7: "decode error").
type DecodeError struct {
	Datatype Datatype
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("metric: decode error for %s: %s", e.Datatype, e.Reason)
}

// ConfigError signals an invalid metric/property construction (§7:
// "configuration error"). Construction failures are always surfaced to the
// caller immediately; there is no partial registration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("metric: configuration error: %s", e.Reason)
}
