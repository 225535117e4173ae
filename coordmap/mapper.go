package coordmap

// Two mapping strategies exist because rendering targets disagree on
// how a 640x640 model frame relates to the widget showing it.  The
// fixed grid strategy assumes the source was letterboxed into the
// model square before inference, so the whole square maps onto the
// destination rectangle.  The aspect gap strategy instead accounts for
// the video/display aspect mismatch directly and produces the visible
// letterband offsets itself.  Call sites pick one by name, the two
// formulas give different output for the same frame.

// NewFixedGridTransform maps model space (0..640) onto the destination
// rectangle: dest = destTopLeft + (model/640) * destSize.  With flipY
// set the vertical axis is inverted, UI coordinate systems commonly
// run Y upwards relative to image coordinates.
func NewFixedGridTransform(dest Rect, flipY bool) Transform {

	scaleY := dest.Height / ModelSize
	offsetY := dest.Y

	if flipY {
		scaleY = -scaleY
		offsetY = dest.Y + dest.Height
	}

	return NewTransform(dest.Width/ModelSize, scaleY, dest.X, offsetY)
}

// NewAspectGapTransform maps model space onto a display of the given
// size while preserving the source frames aspect ratio.  When the
// source is wider than the display the content spans the full display
// width and the height is scaled by displayWidth/sourceAspect, leaving
// letterband gaps top and bottom, and the reverse when the source is
// taller.
func NewAspectGapTransform(displayWidth, displayHeight,
	sourceAspect float32, flipY bool) Transform {

	displayAspect := displayWidth / displayHeight

	contentW := displayWidth
	contentH := displayHeight

	if sourceAspect > displayAspect {
		// source wider than display, bands top and bottom
		contentH = displayWidth / sourceAspect
	} else {
		// source taller than display, bands left and right
		contentW = displayHeight * sourceAspect
	}

	dest := Rect{
		X:      (displayWidth - contentW) / 2,
		Y:      (displayHeight - contentH) / 2,
		Width:  contentW,
		Height: contentH,
	}

	return NewFixedGridTransform(dest, flipY)
}
