package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// Google Calendar event colors, in ID order (1 to 11).
var palette = []string{
	"lavender",
	"sage",
	"grape",
	"flamingo",
	"banana",
	"tangerine",
	"peacock",
	"graphite",
	"blueberry",
	"basil",
	"tomato",
}

// Default is the color ID used for coding sessions (sage).
const Default = "2"

// Resolve turns a palette name ("sage") or a numeric ID ("2") into an event
// color ID. An empty value resolves to Default.
func Resolve(nameOrID string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(nameOrID))
	if v == "" {
		return Default, nil
	}

	if i, err := strconv.Atoi(v); err == nil {
		if i < 1 || i > len(palette) {
			return "", fmt.Errorf("color id %d out of range 1-%d", i, len(palette))
		}
		return colorIndexToString(i), nil
	}

	for i, name := range palette {
		if name == v {
			return colorIndexToString(i + 1), nil
		}
	}
	return "", fmt.Errorf("unknown color %q", nameOrID)
}

// Name returns the palette name for a color ID, or "" if unknown.
func Name(id string) string {
	i, err := strconv.Atoi(id)
	if err != nil || i < 1 || i > len(palette) {
		return ""
	}
	return palette[i-1]
}

func colorIndexToString(i int) string {
	return strconv.Itoa(i)
}
