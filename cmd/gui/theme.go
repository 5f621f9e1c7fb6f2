package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// appTheme keeps the default theme but uses school red for primary actions
// and a clearer green for open seats.
type appTheme struct {
	fyne.Theme
}

func newAppTheme() fyne.Theme {
	return appTheme{Theme: theme.DefaultTheme()}
}

func (t appTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.RGBA{R: 200, G: 16, B: 46, A: 255}
	case theme.ColorNameSuccess:
		return color.RGBA{R: 36, G: 150, B: 63, A: 255}
	case theme.ColorNameBackground:
		if variant == theme.VariantLight {
			return color.RGBA{R: 248, G: 248, B: 248, A: 255}
		}
		return color.RGBA{R: 24, G: 24, B: 24, A: 255}
	}
	return t.Theme.Color(name, variant)
}
