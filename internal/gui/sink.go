package gui

import "fyne.io/fyne/v2"

// ShowImage implements finder.Sink
func (a *Application) ShowImage(data []byte, title string) {
	fyne.Do(func() {
		if err := a.imageDisplay.SetImageData(data, title); err != nil {
			a.log.Warn().Err(err).Msg("cannot display image")
		}
	})
}

// ShowNoResults implements finder.Sink
func (a *Application) ShowNoResults(message string) {
	fyne.Do(func() {
		a.imageDisplay.Clear()
		a.statusLabel.SetText(message)
	})
}

// ShowStatus implements finder.Sink
func (a *Application) ShowStatus(text string) {
	fyne.Do(func() {
		a.statusLabel.SetText(text)
	})
}
