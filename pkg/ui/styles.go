// Package ui provides styled CLI output for the aaac compiler using
// lipgloss.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - carefully chosen for readability and aesthetics.
// Exported so pkg/diag can render diagnostics in the same palette.
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Purple
	ColorSecondary = lipgloss.Color("#56C3F4") // Cyan
	ColorSuccess   = lipgloss.Color("#5AF78E") // Green
	ColorWarning   = lipgloss.Color("#F7DC6F") // Yellow
	ColorError     = lipgloss.Color("#FF6B9D") // Pink/Red
	ColorMuted     = lipgloss.Color("#6C7086") // Gray

	ColorText      = lipgloss.Color("#CDD6F4") // Light text
	ColorSubtle    = lipgloss.Color("#7F849C") // Subtle text
	ColorBorder    = lipgloss.Color("#45475A") // Border
	ColorHighlight = lipgloss.Color("#F5E0DC") // Highlight
	ColorNormal    = lipgloss.Color("#FFFFFF") // Normal white text
)

// Styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			MarginTop(1)

	styleFileInput = lipgloss.NewStyle().
			Foreground(ColorText)

	styleFileOutput = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	styleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Width(12).
			Align(lipgloss.Left)

	styleStepStatus = lipgloss.NewStyle().
			Bold(true)

	styleStepTime = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().
			PaddingLeft(2)
)

// BuildOutput manages the build output display.
type BuildOutput struct {
	startTime time.Time
	fileCount int
}

// NewBuildOutput creates a new build output manager.
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the main aaac header.
func (b *BuildOutput) PrintHeader(version string) {
	header := styleHeader.Render("aaac")
	versionBadge := styleVersion.Render("v" + version)
	fmt.Println(header + " " + versionBadge)
}

// PrintBuildStart prints the build start message.
func (b *BuildOutput) PrintBuildStart(fileCount int) {
	b.fileCount = fileCount

	var msg string
	if fileCount == 1 {
		msg = "Checking 1 file"
	} else {
		msg = fmt.Sprintf("Checking %d files", fileCount)
	}

	fmt.Println(styleSection.Render(msg))
	fmt.Println()
}

// PrintFileStart prints the file being processed.
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	input := styleFileInput.Render(inputPath)
	arrow := styleMuted.Render("→")
	output := styleFileOutput.Render(outputPath)
	fmt.Printf("  %s %s %s\n", input, arrow, output)
	fmt.Println()
}

// Step represents a build step status.
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// StepStatus represents the status of a build step.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// PrintStep prints a build step with status.
func (b *BuildOutput) PrintStep(step Step) {
	var icon, statusStyle string

	switch step.Status {
	case StepSuccess:
		icon = "✓"
		statusStyle = styleSuccess.Render("Done")
	case StepSkipped:
		icon = "○"
		statusStyle = styleMuted.Render("Skipped")
	case StepWarning:
		icon = "⚠"
		statusStyle = styleWarning.Render("Warning")
	case StepError:
		icon = "✗"
		statusStyle = styleError.Render("Failed")
	}

	label := styleStepLabel.Render(step.Name)
	line := fmt.Sprintf("  %s %s", icon, label) + styleStepStatus.Render(statusStyle)

	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}

	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintSummary prints the final build summary.
func (b *BuildOutput) PrintSummary(success bool, errCount int) {
	elapsed := time.Since(b.startTime)
	fmt.Println()

	var summaryLine string
	if success {
		summaryLine = fmt.Sprintf("%s Checked in %s",
			styleSuccess.Render("Success!"),
			styleStepTime.Render(formatDuration(elapsed)))
	} else {
		plural := "s"
		if errCount == 1 {
			plural = ""
		}
		summaryLine = styleError.Render(fmt.Sprintf("Failed: %d error%s", errCount, plural))
	}

	fmt.Println(styleSummary.Render(summaryLine))
}

// PrintDiagnostic prints one already-rendered diagnostic block, styled by
// severity (errors in ColorError, warnings in ColorWarning).
func (b *BuildOutput) PrintDiagnostic(rendered string, isError bool) {
	style := styleWarning
	if isError {
		style = styleError
	}
	fmt.Println(styleIndent.Render(style.Render(rendered)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// PrintVersionInfo prints version information.
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("aaac"))
	fmt.Println()
	fmt.Printf("  %s %s\n", styleMuted.Render("Version:"), styleSuccess.Render(version))
	fmt.Printf("  %s %s\n", styleMuted.Render("Runtime:"), styleFileInput.Render("Go"))
	fmt.Println()
}

// PrintHelp prints colorful help output for the aaac root command.
func PrintHelp(version string) {
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	desc := lipgloss.NewStyle().Foreground(ColorText)
	section := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	command := lipgloss.NewStyle().Foreground(ColorSuccess)
	flag := lipgloss.NewStyle().Foreground(ColorHighlight)

	fmt.Println()
	fmt.Println(header.Render("aaac") + " " + muted.Render("- the aaa compiler front end"))
	fmt.Println(muted.Render("  v" + version))
	fmt.Println()

	fmt.Println(desc.Render("Tokenizes, parses, cross-references, and type-checks aaa source,"))
	fmt.Println(desc.Render("handing the validated result to an external code generator."))
	fmt.Println()

	fmt.Println(section.Render("Usage:"))
	fmt.Println("  aaac [command] [flags]")
	fmt.Println()

	fmt.Println(section.Render("Available Commands:"))
	commands := []struct{ name, desc string }{
		{"check", "Type-check a source file without generating output"},
		{"build", "Run the full front end and report any diagnostics"},
		{"version", "Print the version number of aaac"},
		{"help", "Help about any command"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", command.Render(fmt.Sprintf("%-12s", cmd.name)), cmd.desc)
	}
	fmt.Println()

	fmt.Println(section.Render("Flags:"))
	fmt.Printf("  %s      help for aaac\n", flag.Render("-h, --help"))
	fmt.Printf("  %s   version for aaac\n", flag.Render("-v, --version"))
	fmt.Println()

	fmt.Println(muted.Render("Use \"aaac [command] --help\" for more information about a command."))
	fmt.Println()
}

// Divider creates a horizontal divider.
func Divider() string {
	return styleMuted.Render(strings.Repeat("─", 60))
}
