package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorGold    = 0xF1C40F
	ColorLove    = 0xFF69B4
)

// UI constants
const (
	MaxButtonsPerRow = 5
	MaxActionRows    = 5
)

// Currency is the unit shown after every amount
const Currency = "coins"
