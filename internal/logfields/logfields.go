package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFragment   = "fragment"
	KeyPlatform   = "platform"
	KeyProduct    = "product"
	KeyStage      = "stage"
	KeyRunID      = "run_id"
	KeyOutput     = "output"
	KeyDurationMS = "duration_ms"
	KeyWarnings   = "warnings"
	KeyKind       = "kind"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Fragment(p string) slog.Attr     { return slog.String(KeyFragment, p) }
func Platform(p string) slog.Attr     { return slog.String(KeyPlatform, p) }
func Product(p string) slog.Attr      { return slog.String(KeyProduct, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
