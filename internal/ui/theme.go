package ui

import "strings"

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Warn string
	Bullet, ContactSym, NoStatus               string
	CornerTL, CornerTR, CornerBL, CornerBR     string
	H, V                                       string
	BarFull, BarEmpty                          string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Warn: fgYellow,
		Bullet: "•", ContactSym: "☎", NoStatus: "(no status)",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		BarFull: "█", BarEmpty: "░",
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Warn: "\033[93m",
			Bullet: "◆", ContactSym: "☎", NoStatus: "(no status)",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			BarFull: "█", BarEmpty: "░",
		}
	case "mono":
		disableColor = true
		current = Theme{
			Bullet: "-", ContactSym: "@", NoStatus: "(no status)",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			BarFull: "#", BarEmpty: ".",
		}
	default:
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }
