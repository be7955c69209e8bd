package domain

import "errors"

// ErrInvalidInput marca un request de análisis irrecuperable: precio de
// mercado fuera de (0,1] o bankroll no positivo. Solo invalida esa llamada,
// nunca el pipeline completo.
var ErrInvalidInput = errors.New("invalid input")
