// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Paleta de colores de la consola.
var (
	// SignalGreen enlaces vivos
	SignalGreen = pterm.NewRGB(46, 204, 113)

	// BrokenRed enlaces muertos, errores
	BrokenRed = pterm.NewRGB(215, 38, 56)

	// AmberWarn fallos de transporte, advertencias
	AmberWarn = pterm.NewRGB(255, 182, 39)

	// SlateGray texto secundario, hosts sin soporte
	SlateGray = pterm.NewRGB(110, 110, 110)

	// LinkBlue acentos, URLs
	LinkBlue = pterm.NewRGB(52, 152, 219)
)

// Estilos preconfigurados para diferentes contextos
var (
	StyleSuccess   = SignalGreen.ToRGBStyle()
	StyleError     = BrokenRed.ToRGBStyle()
	StyleWarning   = AmberWarn.ToRGBStyle()
	StyleSecondary = SlateGray.ToRGBStyle()
	StyleAccent    = LinkBlue.ToRGBStyle()
)
