package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/flickfinder/internal"
	"codeberg.org/snonux/flickfinder/internal/finder"
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// Input elements
	phraseEntry    *widget.Entry
	latitudeEntry  *widget.Entry
	longitudeEntry *widget.Entry
	phraseButton   *ttwidget.Button
	locationButton *ttwidget.Button

	// Result elements
	imageDisplay *ImageDisplay
	statusLabel  *widget.Label

	finder *finder.Finder
	log    zerolog.Logger
}

// New creates the GUI application on top of f
func New(f *finder.Finder, log zerolog.Logger) *Application {
	return newApplication(app.NewWithID("org.codeberg.snonux.flickfinder"), f, log)
}

func newApplication(fyneApp fyne.App, f *finder.Finder, log zerolog.Logger) *Application {
	a := &Application{
		app:    fyneApp,
		finder: f,
		log:    log,
	}
	a.setupUI()
	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("Flick Finder v%s", internal.Version))

	// Phrase search
	a.phraseEntry = widget.NewEntry()
	a.phraseEntry.SetPlaceHolder("Search phrase...")
	a.phraseEntry.OnSubmitted = func(string) { a.onPhraseSearch() }
	a.phraseButton = ttwidget.NewButtonWithIcon("", theme.SearchIcon(), a.onPhraseSearch)

	// Location search
	a.latitudeEntry = widget.NewEntry()
	a.latitudeEntry.SetPlaceHolder("Latitude (-90 to 90)")
	a.latitudeEntry.OnSubmitted = func(string) { a.onLocationSearch() }
	a.longitudeEntry = widget.NewEntry()
	a.longitudeEntry.SetPlaceHolder("Longitude (-180 to 180)")
	a.longitudeEntry.OnSubmitted = func(string) { a.onLocationSearch() }
	a.locationButton = ttwidget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.onLocationSearch)

	inputSection := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Phrase:"), a.phraseButton, a.phraseEntry),
		container.NewBorder(nil, nil, widget.NewLabel("Location:"), a.locationButton,
			container.NewGridWithColumns(2, a.latitudeEntry, a.longitudeEntry)),
	)

	a.imageDisplay = NewImageDisplay()
	a.statusLabel = widget.NewLabel("Ready")
	a.statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewBorder(
		container.NewVBox(inputSection, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), a.statusLabel),
		nil, nil,
		a.imageDisplay,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.phraseButton.SetToolTip("Search by phrase (Enter)")
	a.locationButton.SetToolTip("Search around latitude/longitude (Enter)")

	a.window.Resize(fyne.NewSize(640, 600))
	a.window.SetOnClosed(a.finder.Close)
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.Canvas().Focus(a.phraseEntry)
	a.window.ShowAndRun()
}

func (a *Application) onPhraseSearch() {
	a.search(finder.PhraseRequest(a.phraseEntry.Text))
}

func (a *Application) onLocationSearch() {
	a.search(finder.LocationRequest(a.latitudeEntry.Text, a.longitudeEntry.Text))
}

// search starts req in the background, superseding any running search
func (a *Application) search(req finder.Request) <-chan finder.Outcome {
	a.log.Debug().Stringer("mode", req.Mode).Msg("search requested")
	return a.finder.Start(req, a)
}
