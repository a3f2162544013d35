/*
Package eventtype maps free-text event types to display descriptors.

Users type whatever they like into the event type field ("Sunset Yoga",
"trail-running", "Board Games Night"). Resolve turns that text into an icon,
a color and a two-stop gradient using a fixed keyword dictionary, while the
label always keeps the user's original text.
*/
package eventtype

// Gradient is a two-stop color gradient in hex notation.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Descriptor is the display representation of an event type. It is derived
// from the event type on demand and never persisted.
type Descriptor struct {
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Gradient Gradient `json:"gradient"`
	Label    string   `json:"label"`
}

// palette is a named color family. Color doubles as the gradient end stop.
type palette struct {
	Color string
	Light string
}

func (p palette) gradient() Gradient {
	return Gradient{From: p.Light, To: p.Color}
}

var (
	emerald = palette{Color: "#059669", Light: "#34d399"}
	teal    = palette{Color: "#0d9488", Light: "#2dd4bf"}
	cyan    = palette{Color: "#0891b2", Light: "#22d3ee"}
	sky     = palette{Color: "#0284c7", Light: "#38bdf8"}
	blue    = palette{Color: "#2563eb", Light: "#60a5fa"}
	indigo  = palette{Color: "#4f46e5", Light: "#818cf8"}
	violet  = palette{Color: "#7c3aed", Light: "#a78bfa"}
	purple  = palette{Color: "#9333ea", Light: "#c084fc"}
	fuchsia = palette{Color: "#c026d3", Light: "#e879f9"}
	pink    = palette{Color: "#db2777", Light: "#f472b6"}
	rose    = palette{Color: "#e11d48", Light: "#fb7185"}
	red     = palette{Color: "#dc2626", Light: "#f87171"}
	orange  = palette{Color: "#ea580c", Light: "#fb923c"}
	amber   = palette{Color: "#d97706", Light: "#fbbf24"}
	yellow  = palette{Color: "#ca8a04", Light: "#facc15"}
	lime    = palette{Color: "#65a30d", Light: "#a3e635"}
	green   = palette{Color: "#16a34a", Light: "#4ade80"}
	slate   = palette{Color: "#475569", Light: "#94a3b8"}

	neutral = palette{Color: "#6b7280", Light: "#9ca3af"}
)

const defaultIcon = "📍"

// Default returns the neutral descriptor used when no keyword matches.
func Default(label string) Descriptor {
	return Descriptor{
		Icon:     defaultIcon,
		Color:    neutral.Color,
		Gradient: neutral.gradient(),
		Label:    label,
	}
}
