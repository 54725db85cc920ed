// internal/platform/resilience/retry.go
package resilience

import (
	"context"
	"math"
	"time"
)

// Budget es el presupuesto de reintentos de una cadena de verificación.
// Es un valor inmutable: Spend retorna un presupuesto nuevo, de modo que cada
// intento lleva explícitamente lo que le queda. Nunca es negativo.
type Budget struct {
	remaining int
}

// NewBudget crea un presupuesto con n reintentos (n < 0 se trata como 0).
func NewBudget(n int) Budget {
	if n < 0 {
		n = 0
	}
	return Budget{remaining: n}
}

// Remaining retorna los reintentos disponibles.
func (b Budget) Remaining() int {
	return b.remaining
}

// Exhausted indica si ya no quedan reintentos.
func (b Budget) Exhausted() bool {
	return b.remaining <= 0
}

// Spend consume un reintento. Retorna false si el presupuesto estaba agotado.
func (b Budget) Spend() (Budget, bool) {
	if b.Exhausted() {
		return b, false
	}
	return Budget{remaining: b.remaining - 1}, true
}

// Backoff calcula la espera entre reintentos. Con Base = 0 los reintentos
// son inmediatos.
type Backoff struct {
	Base       time.Duration
	Multiplier float64
	Max        time.Duration
}

// Delay retorna la espera antes del reintento número attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 2.0
	}

	// Exponential backoff: base * multiplier^attempt
	d := time.Duration(float64(b.Base) * math.Pow(mult, float64(attempt)))

	maxBackoff := b.Max
	if maxBackoff <= 0 {
		maxBackoff = 60 * time.Second
	}
	if d > maxBackoff || d < 0 {
		d = maxBackoff
	}
	return d
}

// Sleep espera d respetando la cancelación del contexto.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
