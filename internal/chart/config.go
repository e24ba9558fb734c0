package chart

// Config is the construction configuration handed to the browser line-chart
// widget. Field names follow the widget's option tree.
type Config struct {
	Type    string  `json:"type"`
	Dataset Dataset `json:"dataset"`
	Options Options `json:"options"`
}

type Dataset struct {
	Label                string  `json:"label"`
	BorderColor          string  `json:"borderColor"`
	BackgroundColor      string  `json:"backgroundColor"`
	BorderWidth          int     `json:"borderWidth"`
	Fill                 bool    `json:"fill"`
	Tension              float64 `json:"tension"`
	PointBackgroundColor string  `json:"pointBackgroundColor"`
	PointBorderColor     string  `json:"pointBorderColor"`
	PointBorderWidth     int     `json:"pointBorderWidth"`
	PointRadius          int     `json:"pointRadius"`
	PointHoverRadius     int     `json:"pointHoverRadius"`
}

type Options struct {
	Responsive          bool        `json:"responsive"`
	MaintainAspectRatio bool        `json:"maintainAspectRatio"`
	Legend              bool        `json:"legend"`
	X                   Axis        `json:"x"`
	Y                   Axis        `json:"y"`
	Interaction         Interaction `json:"interaction"`
}

type Axis struct {
	GridColor  string `json:"gridColor"`
	TickColor  string `json:"tickColor"`
	TickPrefix string `json:"tickPrefix,omitempty"`
}

type Interaction struct {
	Intersect bool   `json:"intersect"`
	Mode      string `json:"mode"`
}

// DefaultConfig is the FTSE 100 price line styling.
func DefaultConfig() Config {
	const (
		accent = "#00d4ff"
		grid   = "rgba(255, 255, 255, 0.1)"
		ticks  = "rgba(255, 255, 255, 0.7)"
	)
	return Config{
		Type: "line",
		Dataset: Dataset{
			Label:                "FTSE 100 Price",
			BorderColor:          accent,
			BackgroundColor:      "rgba(0, 212, 255, 0.1)",
			BorderWidth:          3,
			Fill:                 true,
			Tension:              0.4,
			PointBackgroundColor: accent,
			PointBorderColor:     "#ffffff",
			PointBorderWidth:     2,
			PointRadius:          4,
			PointHoverRadius:     6,
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Legend:              false,
			X:                   Axis{GridColor: grid, TickColor: ticks},
			Y:                   Axis{GridColor: grid, TickColor: ticks, TickPrefix: "£"},
			Interaction:         Interaction{Intersect: false, Mode: "index"},
		},
	}
}
