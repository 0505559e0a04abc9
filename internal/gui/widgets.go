package gui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	_ "golang.org/x/image/webp"
)

const noImageText = "No image"

// ImageDisplay is a custom widget for displaying images
type ImageDisplay struct {
	widget.BaseWidget

	container   *fyne.Container
	imageCanvas *canvas.Image
	imageLabel  *widget.Label
}

// NewImageDisplay creates a new image display widget
func NewImageDisplay() *ImageDisplay {
	d := &ImageDisplay{}

	// Create image canvas
	d.imageCanvas = canvas.NewImageFromResource(nil)
	d.imageCanvas.FillMode = canvas.ImageFillContain
	d.imageCanvas.SetMinSize(fyne.NewSize(500, 375))

	// Create label
	d.imageLabel = widget.NewLabel(noImageText)
	d.imageLabel.Alignment = fyne.TextAlignCenter

	d.container = container.NewBorder(
		nil,
		d.imageLabel,
		nil, nil,
		d.imageCanvas,
	)

	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.container)
}

// SetImageData decodes data and displays it under caption.
// Undecodable data clears the canvas and reports the error in the caption.
func (d *ImageDisplay) SetImageData(data []byte, caption string) error {
	if len(data) == 0 {
		d.Clear()
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		d.imageCanvas.Image = nil
		d.imageCanvas.Refresh()
		d.imageLabel.SetText(fmt.Sprintf("Error decoding image: %v", err))
		return err
	}

	d.imageCanvas.Image = img
	d.imageCanvas.Refresh()
	d.imageLabel.SetText(caption)
	return nil
}

// HasImage reports whether an image is currently shown
func (d *ImageDisplay) HasImage() bool {
	return d.imageCanvas.Image != nil
}

// Caption returns the text below the image
func (d *ImageDisplay) Caption() string {
	return d.imageLabel.Text
}

// Clear clears the display
func (d *ImageDisplay) Clear() {
	d.imageCanvas.Image = nil
	d.imageCanvas.Refresh()
	d.imageLabel.SetText(noImageText)
}
