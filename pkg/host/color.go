package host

// TextColor is a foreground colour for [Logger.LogWithColor].
type TextColor string

const (
	TextBlack   TextColor = "black"
	TextRed     TextColor = "red"
	TextGreen   TextColor = "green"
	TextYellow  TextColor = "yellow"
	TextBlue    TextColor = "blue"
	TextMagenta TextColor = "magenta"
	TextCyan    TextColor = "cyan"
	TextWhite   TextColor = "white"
	TextGray    TextColor = "gray"
)

// BackgroundColor is a background colour for [Logger.LogWithColor].
type BackgroundColor string

const (
	BackgroundDefault BackgroundColor = ""
	BackgroundBlack   BackgroundColor = "blackBG"
	BackgroundRed     BackgroundColor = "redBG"
	BackgroundGreen   BackgroundColor = "greenBG"
	BackgroundYellow  BackgroundColor = "yellowBG"
	BackgroundBlue    BackgroundColor = "blueBG"
	BackgroundMagenta BackgroundColor = "magentaBG"
	BackgroundCyan    BackgroundColor = "cyanBG"
	BackgroundWhite   BackgroundColor = "whiteBG"
)
