package render

// Theme holds colors shared by the HTML and terminal backends.
type Theme struct {
	Background string
	Text       string
	Target     string // highlighted block after following a link

	Keyword string
	Type    string
	Comment string
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	Text:       "#1A1A1A",
	Target:     "#ECEFF1", // blue-gray 50

	Keyword: "#0B3D91", // NASA blue
	Type:    "#00695C", // teal
	Comment: "#9E9E9E", // gray
}
