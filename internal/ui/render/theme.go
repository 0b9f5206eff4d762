package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background   tcell.Color
	Foreground   tcell.Color
	SelectionBg  tcell.Color
	SelectionFg  tcell.Color
	HighlightFg  tcell.Color
	FooterBg     tcell.Color
	FooterFg     tcell.Color
	MessageFg    tcell.Color
	PanelBg      tcell.Color
	PanelFg      tcell.Color
	PanelTitleBg tcell.Color
	PanelTitleFg tcell.Color
	InputBg      tcell.Color
	InputFg      tcell.Color
	ButtonFg     tcell.Color
	CounterFg    tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:   tcell.ColorDefault,
		Foreground:   tcell.ColorDefault,
		SelectionBg:  tcell.Color33,
		SelectionFg:  tcell.ColorWhite,
		HighlightFg:  tcell.ColorBlack,
		FooterBg:     tcell.Color236,
		FooterFg:     tcell.Color252,
		MessageFg:    tcell.Color214,
		PanelBg:      tcell.Color237,
		PanelFg:      tcell.Color252,
		PanelTitleBg: tcell.Color24,
		PanelTitleFg: tcell.ColorWhite,
		InputBg:      tcell.Color234,
		InputFg:      tcell.ColorWhite,
		ButtonFg:     tcell.Color117,
		CounterFg:    tcell.Color250,
	}
}
