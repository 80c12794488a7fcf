package devapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeUnknown          = "devicectl-error-unknown"
	ECodeInternal         = "devicectl-error-internal"
	ECodeInitialization   = "devicectl-error-initialization"
	ECodeConfiguration    = "devicectl-error-configuration"
	ECodeInvalidParameter = "devicectl-error-invalid-parameter"
	ECodeArgument         = "devicectl-error-invalid-argument"
	ECodeIo               = "devicectl-error-io"
	ECodeSerialization    = "devicectl-error-serialization"
	ECodeProfileMissing   = "devicectl-error-profile-missing"
	ECodeConnection       = "devicectl-error-connection"
)

// The device error family.  Everything starting with ECodeDevice is treated
// as a fault reported by (or while talking to) a device.
const (
	ECodeDevice           = "devicectl-error-device"
	ECodeDeviceConnection = "devicectl-error-device-connection"
	ECodeDeviceTimeout    = "devicectl-error-device-timeout"
	ECodeDeviceProtocol   = "devicectl-error-device-protocol"
	ECodeDeviceResponse   = "devicectl-error-device-response"
)

type coded interface {
	Code() string
}

// Code returns the code of the first serum error in err's chain,
// or the empty string if there is none.
func Code(err error) string {
	for err != nil {
		if c, ok := err.(coded); ok {
			return c.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// IsDeviceError reports whether any error in err's chain belongs to the device error family.
func IsDeviceError(err error) bool {
	for err != nil {
		if c, ok := err.(coded); ok && strings.HasPrefix(c.Code(), ECodeDevice) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ErrorInternal is for miscellaneous errors that should be handled internally.
// In most cases, prefer to use more specific errors.
//
// Errors:
//
//   - devicectl-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorInitialization is returned when the application cannot set itself up,
// e.g. when tracing or the environment cannot be initialized.
//
// Errors:
//
//   - devicectl-error-initialization --
func ErrorInitialization(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInitialization, "%s: %w", msgTmpl, cause)
}

// ErrorConfiguration is returned when the command tables themselves are inconsistent.
// These are programming errors: nothing the user types can fix them.
//
// Errors:
//
//   - devicectl-error-configuration --
func ErrorConfiguration(reason string) error {
	return serum.Error(ECodeConfiguration,
		serum.WithMessageTemplate("configuration error: {{reason}}"),
		serum.WithDetail("reason", reason),
	)
}

// ErrorInvalidParameter is returned when a group option fails validation.
//
// Errors:
//
//   - devicectl-error-invalid-parameter --
func ErrorInvalidParameter(param string, reason string) error {
	return serum.Error(ECodeInvalidParameter,
		serum.WithMessageTemplate("invalid value for {{param|q}}: {{reason}}"),
		serum.WithDetail("param", param),
		serum.WithDetail("reason", reason),
	)
}

// ErrorArgument is returned when positional arguments of a command are missing or malformed.
//
// Errors:
//
//   - devicectl-error-invalid-argument --
func ErrorArgument(command string, reason string) error {
	return serum.Error(ECodeArgument,
		serum.WithMessageTemplate("{{command}}: {{reason}}"),
		serum.WithDetail("command", command),
		serum.WithDetail("reason", reason),
	)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//   - devicectl-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo, "io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//   - devicectl-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization, "serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorProfileMissing is returned when a named connection profile does not exist.
//
// Errors:
//
//   - devicectl-error-profile-missing --
func ErrorProfileMissing(name string, path string) error {
	return serum.Error(ECodeProfileMissing,
		serum.WithMessageTemplate("no profile named {{name|q}} in {{path|q}}"),
		serum.WithDetail("name", name),
		serum.WithDetail("path", path),
	)
}

// ErrorDeviceConnection is returned when a device cannot be reached.
//
// Errors:
//
//   - devicectl-error-device-connection --
func ErrorDeviceConnection(address string, cause error) error {
	result := serum.Errorf(ECodeDeviceConnection, "unable to reach device at %s: %w", address, cause)
	addDetails(result, [][2]string{
		{"address", address},
	})
	return result
}

// ErrorDeviceTimeout is returned when a device does not answer in time.
//
// Errors:
//
//   - devicectl-error-device-timeout --
func ErrorDeviceTimeout(address string, method string) error {
	return serum.Error(ECodeDeviceTimeout,
		serum.WithMessageTemplate("device at {{address}} did not answer {{method|q}} in time"),
		serum.WithDetail("address", address),
		serum.WithDetail("method", method),
	)
}

// ErrorDeviceProtocol is returned when a device answers with something that isn't a valid reply.
//
// Errors:
//
//   - devicectl-error-device-protocol --
func ErrorDeviceProtocol(method string, reason string) error {
	return serum.Error(ECodeDeviceProtocol,
		serum.WithMessageTemplate("malformed reply to {{method|q}}: {{reason}}"),
		serum.WithDetail("method", method),
		serum.WithDetail("reason", reason),
	)
}

// ErrorDeviceResponse is returned when a device rejects a request.
//
// Errors:
//
//   - devicectl-error-device-response --
func ErrorDeviceResponse(method string, code int64, message string) error {
	return serum.Error(ECodeDeviceResponse,
		serum.WithMessageTemplate("device rejected {{method|q}}: {{message}} (code {{code}})"),
		serum.WithDetail("method", method),
		serum.WithDetail("code", fmt.Sprintf("%d", code)),
		serum.WithDetail("message", message),
	)
}

// addDetails is a helper method to get around the fact that doing a type coercion within
// an exported function is not currently allowed by serum.
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
