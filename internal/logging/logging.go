// Package logging adapts the hauke96/sigolo leveled logger to
// bufstream.Logger, the interface the core package depends on so it never
// imports a concrete logging library itself.
package logging

import (
	"github.com/xorpaul/sigolo"
)

// Sigolo implements bufstream.Logger on top of the package-level sigolo
// logger. It carries no state: sigolo's level and output are configured
// globally, the same way tiny-http-proxy's main.go does it.
type Sigolo struct{}

func New() Sigolo { return Sigolo{} }

func (Sigolo) Debugf(format string, args ...any) { sigolo.Debug(format, args...) }
func (Sigolo) Infof(format string, args ...any)  { sigolo.Info(format, args...) }
func (Sigolo) Warnf(format string, args ...any)  { sigolo.Warn(format, args...) }
func (Sigolo) Errorf(format string, args ...any) { sigolo.Error(format, args...) }

// SetVerbose raises sigolo's global log level to debug, mirroring the
// -debug/-verbose flags in tiny-http-proxy's main.go.
func SetVerbose(verbose bool) {
	if verbose {
		sigolo.LogLevel = sigolo.LOG_DEBUG
	} else {
		sigolo.LogLevel = sigolo.LOG_INFO
	}
}
