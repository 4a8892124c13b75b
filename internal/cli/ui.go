package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/schema"
	"github.com/matzehuels/vfxgraph/pkg/serial"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message to stderr, keeping stdout clean for
// piped documents.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Graph Display
// =============================================================================

// printGraphStats prints the size of a decoded graph.
func printGraphStats(version int, st model.Stats) {
	printKeyValue("Version", versionLabel(version))
	printKeyValue("Systems", StyleNumber.Render(fmt.Sprint(st.Systems)))
	printKeyValue("Nodes", StyleNumber.Render(fmt.Sprint(st.Nodes)))
	printKeyValue("Ports", StyleNumber.Render(fmt.Sprint(st.Ports)))

	var edges []string
	if st.Links > 0 {
		edges = append(edges, fmt.Sprintf("%d links", st.Links))
	}
	if st.Spawns > 0 {
		edges = append(edges, fmt.Sprintf("%d spawns", st.Spawns))
	}
	if st.Triggers > 0 {
		edges = append(edges, fmt.Sprintf("%d triggers", st.Triggers))
	}
	if len(edges) == 0 {
		edges = append(edges, "none")
	}
	printKeyValue("Edges", strings.Join(edges, StyleDim.Render(" · ")))
}

func versionLabel(v int) string {
	switch {
	case v == 0:
		return StyleDim.Render("empty document")
	case v < schema.Current:
		return StyleWarning.Render(fmt.Sprintf("%d (current is %d)", v, schema.Current))
	}
	return StyleNumber.Render(fmt.Sprint(v))
}

// printIssues lists recoverable read problems, or a success line.
func printIssues(issues []serial.Issue) {
	if len(issues) == 0 {
		printSuccess("No issues")
		return
	}
	printWarning("%d issue(s)", len(issues))
	for _, is := range issues {
		printDetail("%s", is.String())
	}
}

// printCacheStatus prints whether an artifact came from the cache.
func printCacheStatus(cached bool) {
	if cached {
		fmt.Println("  " + styleCached.Render(iconCached))
		return
	}
	fmt.Println("  " + styleComputed.Render(iconFresh))
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
