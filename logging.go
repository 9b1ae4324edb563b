// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger the Async Frame runtime and combinators
// report diagnostics through. A nil Logger is valid and simply discards
// everything, the same nil-safety logiface.Logger itself provides.
type Logger = *logiface.Logger[*stumpy.Event]

// NewDefaultLogger builds a Logger writing zero-allocation JSON lines via
// stumpy, the pairing the rest of the retrieved pack (logiface-stumpy)
// standardizes on when no other backend (logrus, slog, zerolog) is
// already in play.
func NewDefaultLogger() Logger {
	return stumpy.L.New(stumpy.L.WithStumpy())
}

func logDebug(l Logger, msg string, fields func(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event]) {
	if l == nil {
		return
	}
	b := l.Debug()
	if b == nil {
		return
	}
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}
