package render

import (
	"fmt"
	"math"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/session"
	"dicehall/domain/utils"
)

const (
	titleHeight = 34
	timerHeight = 30
	tileHeight  = 64
	footHeight  = 34
)

func tilesPerRow(kind entities.GameKind) int {
	if kind == entities.GameKindAnimalDice {
		return 3
	}
	return 2
}

// Board draws the betting board: round header, countdown bar, one tile per side with its total
func (r *Renderer) Board(view session.BoardView, roundDuration int) ([]byte, error) {
	start := time.Now()
	st := r.style
	f := r.faces()

	perRow := tilesPerRow(view.Kind)
	rows := int(math.Ceil(float64(len(view.Sides)) / float64(perRow)))
	height := int(st.Padding*2) + titleHeight + timerHeight + rows*(tileHeight+int(st.TileGap)) + footHeight

	dc := r.canvas(height)
	width := float64(st.Width)

	// header
	y := st.Padding + 22
	dc.SetFontFace(f.title)
	setRGB(dc, st.Accent)
	drawSharpText(dc, view.Kind.DisplayName(), st.Padding, y, 0, 0)
	dc.SetFontFace(f.heading)
	setRGB(dc, st.Text)
	drawSharpText(dc, fmt.Sprintf("Round %d", view.Round), width-st.Padding, y, 1, 0)

	// countdown
	y += 14
	barWidth := width - st.Padding*2
	r.panel(dc, st.Padding, y, barWidth, 10)
	if roundDuration > 0 && view.Remaining > 0 {
		ratio := math.Max(0, math.Min(1, float64(view.Remaining)/float64(roundDuration)))
		if view.Remaining <= 10 {
			setRGB(dc, st.Lose)
		} else {
			setRGB(dc, st.Win)
		}
		dc.DrawRoundedRectangle(st.Padding, y, barWidth*ratio, 10, 5)
		dc.Fill()
	}
	dc.SetFontFace(f.body)
	setRGB(dc, st.Muted)
	drawSharpText(dc, fmt.Sprintf("%ds left", view.Remaining), width-st.Padding, y+24, 1, 0)

	// side tiles
	y += timerHeight
	tileWidth := (barWidth - st.TileGap*float64(perRow-1)) / float64(perRow)
	for idx, side := range view.Sides {
		col := idx % perRow
		row := idx / perRow
		x := st.Padding + float64(col)*(tileWidth+st.TileGap)
		ty := y + float64(row)*(tileHeight+st.TileGap)

		r.panel(dc, x, ty, tileWidth, tileHeight)

		dc.SetFontFace(f.heading)
		setRGB(dc, st.Text)
		drawSharpText(dc, side.Label(), x+tileWidth/2, ty+24, 0.5, 0)

		total := view.Totals[side]
		dc.SetFontFace(f.mono)
		if total > 0 {
			setRGB(dc, st.Accent)
		} else {
			setRGB(dc, st.Muted)
		}
		drawSharpText(dc, utils.FormatAmount(total), x+tileWidth/2, ty+48, 0.5, 0)
	}

	// footer
	y += float64(rows) * (tileHeight + st.TileGap)
	dc.SetFontFace(f.body)
	setRGB(dc, st.Text)
	drawSharpText(dc, fmt.Sprintf("Players: %d", view.Players), st.Padding, y+18, 0, 0)
	if view.Kind == entities.GameKindDiceSum {
		setRGB(dc, st.Accent)
		drawSharpText(dc, "Jackpot: "+utils.FormatAmount(view.Jackpot), width-st.Padding, y+18, 1, 0)
	}

	return r.encode(dc, "board", start)
}
