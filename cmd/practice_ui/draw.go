package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	piano "github.com/ARahim900/Piano-Shaima"
)

var (
	bgColor         = color.RGBA{192, 192, 192, 255}
	panelColor      = color.RGBA{192, 192, 192, 255}
	borderColor     = color.RGBA{128, 128, 128, 255}
	bevelLight      = color.RGBA{255, 255, 255, 255}
	bevelDarker     = color.RGBA{64, 64, 64, 255}
	sunkenBgColor   = color.RGBA{24, 24, 32, 255}
	sliderFillColor = color.RGBA{0, 0, 128, 255}

	noteColor      = color.RGBA{90, 90, 120, 255}
	targetColor    = color.RGBA{240, 200, 40, 255}
	correctColor   = color.RGBA{40, 180, 60, 255}
	incorrectColor = color.RGBA{200, 40, 40, 255}
	heldColor      = color.RGBA{70, 110, 220, 255}
	whiteKeyColor  = color.RGBA{245, 245, 245, 255}
	blackKeyColor  = color.RGBA{20, 20, 20, 255}
)

// Keyboard range drawn on screen, in MIDI note numbers.
const (
	kbLow  = 48 // C3
	kbHigh = 83 // B5
)

type uiLayout struct {
	notes, keyboard, progress image.Rectangle
	play, stop, learn         image.Rectangle
	speed, volume, status     image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)
	pad := 20
	rowH := 44
	statusH := 40

	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH
	progressTop := controlsTop - 12 - 20
	kbH := 160
	kbTop := progressTop - 12 - kbH

	return uiLayout{
		notes:    image.Rect(pad, pad, w-pad, kbTop-12),
		keyboard: image.Rect(pad, kbTop, w-pad, kbTop+kbH),
		progress: image.Rect(pad, progressTop, w-pad, progressTop+20),
		play:     image.Rect(pad, controlsTop, pad+130, controlsTop+rowH),
		stop:     image.Rect(pad+142, controlsTop, pad+272, controlsTop+rowH),
		learn:    image.Rect(pad+284, controlsTop, pad+434, controlsTop+rowH),
		speed:    image.Rect(pad+446, controlsTop, pad+446+(w-pad*2-446-12)/2, controlsTop+rowH),
		volume:   image.Rect(w-pad-(w-pad*2-446-12)/2, controlsTop, w-pad, controlsTop+rowH),
		status:   image.Rect(pad, statusTop, w-pad, statusTop+statusH),
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()

	g.drawSunkenPanel(screen, l.notes)
	g.drawNotes(screen, l.notes)
	g.drawKeyboard(screen, l.keyboard)
	g.drawProgress(screen, l.progress)
	g.drawButton(screen, l.play, g.playButtonLabel())
	g.drawButton(screen, l.stop, "Stop")
	g.drawButton(screen, l.learn, g.learnButtonLabel())
	g.drawSlider(screen, l.speed, fmt.Sprintf("%.2fx", g.currentSpeed()),
		(g.currentSpeed()-minSpeed)/(g.cfg.MaxSpeed-minSpeed))
	g.drawSlider(screen, l.volume, fmt.Sprintf("Vol %d%%", int(g.snap.Volume*100+0.5)), g.snap.Volume)
	g.drawSunkenPanel(screen, l.status)
	g.drawStatus(screen, l.status)
}

// drawNotes lays the song out as a strip of boxes, one per note, scrolled so
// the highlighted note stays in view.
func (g *game) drawNotes(screen *ebiten.Image, rect image.Rectangle) {
	title := "(no song)"
	if g.song != nil {
		title = g.song.Title()
	}
	g.drawText(screen, fmt.Sprintf("%s  [%s]", title, g.snap.State), rect.Min.X+8, rect.Min.Y+8)
	if g.song == nil || g.song.Len() == 0 {
		return
	}

	const boxW, gap = 64, 6
	top := rect.Min.Y + 16 + lineH
	boxH := min(rect.Dy()-lineH-32, 96)
	perRow := max(1, (rect.Dx()-16)/(boxW+gap))
	first := 0
	if h := g.snap.Highlight; h.Valid && h.Index >= perRow/2 {
		first = h.Index - perRow/2
	}
	for i := 0; i < perRow && first+i < g.song.Len(); i++ {
		idx := first + i
		n := g.song.At(idx)
		x := rect.Min.X + 8 + i*(boxW+gap)
		box := image.Rect(x, top, x+boxW, top+boxH)
		fill := noteColor
		if n.IsRest() {
			fill = sunkenBgColor
		}
		if g.snap.Highlight.Valid && g.snap.Highlight.Index == idx {
			fill = g.highlightFill()
		} else if g.snap.State == piano.Learning && idx < g.snap.Cursor {
			fill = correctColor
		}
		ebitenutil.DrawRect(screen, float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy()), fill)
		drawBorder(screen, box)
		label := n.Pitch.String()
		if n.IsRest() {
			label = "-"
		}
		g.drawText(screen, label, x+6, top+6)
	}
}

// highlightFill is the highlight colour, tinted by a live learning pulse.
func (g *game) highlightFill() color.RGBA {
	switch g.snap.Pulse.Kind {
	case piano.PulseCorrect:
		return correctColor
	case piano.PulseIncorrect:
		return incorrectColor
	default:
		return targetColor
	}
}

func isBlack(n int) bool {
	switch n % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

func (g *game) drawKeyboard(screen *ebiten.Image, rect image.Rectangle) {
	held := make(map[int]bool, len(g.snap.Active))
	for _, p := range g.snap.Active {
		if n, ok := p.MIDI(); ok {
			held[n] = true
		}
	}
	target := -1
	if g.snap.Highlight.Valid {
		if n, ok := g.snap.Highlight.Pitch.MIDI(); ok {
			target = n
		}
	}
	keyFill := func(n int, base color.RGBA) color.RGBA {
		switch {
		case held[n]:
			return heldColor
		case n == target:
			return g.highlightFill()
		default:
			return base
		}
	}

	whites := 0
	for n := kbLow; n <= kbHigh; n++ {
		if !isBlack(n) {
			whites++
		}
	}
	whiteW := rect.Dx() / whites
	x := rect.Min.X
	whiteX := make(map[int]int, whites)
	for n := kbLow; n <= kbHigh; n++ {
		if isBlack(n) {
			continue
		}
		whiteX[n] = x
		key := image.Rect(x, rect.Min.Y, x+whiteW, rect.Max.Y)
		fill := keyFill(n, whiteKeyColor)
		ebitenutil.DrawRect(screen, float64(key.Min.X), float64(key.Min.Y), float64(key.Dx()), float64(key.Dy()), fill)
		drawSunkenBorder(screen, key)
		if n%12 == 0 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("C%d", n/12-1), x+4, rect.Max.Y-18)
		}
		x += whiteW
	}
	blackW := whiteW * 2 / 3
	blackH := rect.Dy() * 3 / 5
	for n := kbLow; n <= kbHigh; n++ {
		if !isBlack(n) {
			continue
		}
		bx := whiteX[n-1] + whiteW - blackW/2
		ebitenutil.DrawRect(screen, float64(bx), float64(rect.Min.Y), float64(blackW), float64(blackH), keyFill(n, blackKeyColor))
	}
}

func (g *game) drawProgress(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), bevelDarker)
	if g.song == nil || g.song.End() <= 0 {
		return
	}
	frac := clamp(float64(g.snap.Elapsed)/float64(g.song.End()), 0, 1)
	fillW := int(frac * float64(rect.Dx()))
	if fillW > 0 {
		ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(fillW), float64(rect.Dy()), sliderFillColor)
	}
	label := fmt.Sprintf("%s / %s", g.snap.Elapsed.Truncate(100*time.Millisecond), g.song.End().Truncate(100*time.Millisecond))
	ebitenutil.DebugPrintAt(screen, label, rect.Min.X+6, rect.Min.Y+3)
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	if g.snap.State == piano.Error && g.snap.GenerationErr != nil {
		msg = "Status: ERROR - " + g.snap.GenerationErr.Error()
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) playButtonLabel() string {
	switch g.snap.State {
	case piano.Playing:
		return "Pause"
	case piano.Paused:
		return "Resume"
	default:
		return "Play"
	}
}

func (g *game) learnButtonLabel() string {
	if g.snap.State == piano.Learning {
		return "Exit"
	}
	return "Learn"
}

// drawSlider draws a labelled horizontal slider at value v in [0, 1].
func (g *game) drawSlider(screen *ebiten.Image, rect image.Rectangle, label string, v float64) {
	g.drawPanel(screen, rect)
	g.drawText(screen, label, rect.Min.X+8, rect.Min.Y+8)

	trackX, trackW := sliderTrack(rect)
	trackY := rect.Min.Y + rect.Dy()/2 - 4
	if trackW < 20 {
		return
	}
	// Sunken track groove.
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW), 8, bevelDarker)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW-1), 1, borderColor)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), 1, 7, borderColor)
	fillW := int(float64(trackW) * clamp(v, 0, 1))
	if fillW > 2 {
		ebitenutil.DrawRect(screen, float64(trackX+1), float64(trackY+1), float64(fillW-1), 6, sliderFillColor)
	}
	knobX := min(max(trackX+fillW-5, trackX-5), trackX+trackW-5)
	knobRect := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	ebitenutil.DrawRect(screen, float64(knobRect.Min.X), float64(knobRect.Min.Y), float64(knobRect.Dx()), float64(knobRect.Dy()), panelColor)
	drawBorder(screen, knobRect)
}

func sliderTrack(rect image.Rectangle) (x, w int) {
	return rect.Min.X + 130, rect.Dx() - 146
}

// sliderValue maps a mouse x position onto [0, 1] along rect's track.
func sliderValue(mx int, rect image.Rectangle) float64 {
	trackX, trackW := sliderTrack(rect)
	if trackW <= 0 {
		return 0
	}
	return clamp(float64(mx-trackX)/float64(trackW), 0, 1)
}

func (g *game) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	g.drawPanel(screen, rect)
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	g.drawText(screen, label, x, y)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 3000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	// Embossed shadow.
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
