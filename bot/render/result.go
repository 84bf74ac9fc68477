package render

import (
	"fmt"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/session"
	"dicehall/domain/utils"

	"github.com/fogleman/gg"
)

const (
	dieSize        = 64
	resultHeader   = 140
	maxResultLines = 10
	nameColumn     = 22
)

// pips are die pip positions on a 3x3 grid, indexed by face
var pips = [7][][2]int{
	{},
	{{1, 1}},
	{{0, 0}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 0}, {2, 0}, {0, 2}, {2, 2}},
	{{0, 0}, {2, 0}, {1, 1}, {0, 2}, {2, 2}},
	{{0, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {2, 2}},
}

// Result draws the three dice, the winning side and the top payout lines
func (r *Renderer) Result(view session.ResultView) ([]byte, error) {
	start := time.Now()
	st := r.style
	f := r.faces()

	lines := view.Lines
	if len(lines) > maxResultLines {
		lines = lines[:maxResultLines]
	}
	height := int(st.Padding*2) + resultHeader + (len(lines)+1)*int(st.RowHeight) + footHeight

	dc := r.canvas(height)
	width := float64(st.Width)

	y := st.Padding + 22
	dc.SetFontFace(f.title)
	setRGB(dc, st.Accent)
	drawSharpText(dc, view.Kind.DisplayName(), st.Padding, y, 0, 0)
	dc.SetFontFace(f.heading)
	setRGB(dc, st.Text)
	drawSharpText(dc, fmt.Sprintf("Round %d result", view.Round), width-st.Padding, y, 1, 0)

	// dice
	y += 14
	totalDice := 3*dieSize + 2*st.TileGap*2
	x := (width - totalDice) / 2
	for i, face := range view.Outcome.Dice {
		dx := x + float64(i)*(dieSize+st.TileGap*2)
		if view.Kind == entities.GameKindAnimalDice {
			r.drawAnimalDie(dc, f, dx, y, view.Outcome.Faces[i])
		} else {
			r.drawDie(dc, dx, y, face)
		}
	}

	// verdict
	y += dieSize + 30
	dc.SetFontFace(f.heading)
	setRGB(dc, st.Accent)
	drawSharpText(dc, verdict(view.Outcome), width/2, y, 0.5, 0)

	// payout table
	y += 30
	dc.SetFontFace(f.body)
	setRGB(dc, st.Muted)
	drawSharpText(dc, "Player", st.Padding, y, 0, 0)
	drawSharpText(dc, "Staked", width*0.55, y, 1, 0)
	drawSharpText(dc, "Net", width-st.Padding, y, 1, 0)
	dc.SetLineWidth(1)
	dc.SetRGBA(1, 1, 1, 0.2)
	dc.DrawLine(st.Padding, y+6, width-st.Padding, y+6)
	dc.Stroke()

	dc.SetFontFace(f.mono)
	for _, line := range lines {
		y += st.RowHeight
		setRGB(dc, st.Text)
		drawSharpText(dc, truncate(line.DisplayName, nameColumn), st.Padding, y, 0, 0)
		drawSharpText(dc, utils.FormatAmount(line.Staked), width*0.55, y, 1, 0)
		if line.Net >= 0 {
			setRGB(dc, st.Win)
		} else {
			setRGB(dc, st.Lose)
		}
		drawSharpText(dc, utils.FormatSigned(line.Net), width-st.Padding, y, 1, 0)
	}
	if len(lines) == 0 {
		y += st.RowHeight
		setRGB(dc, st.Muted)
		drawSharpText(dc, "No bets this round", width/2, y, 0.5, 0)
	}

	// footer
	y += st.RowHeight + 8
	dc.SetFontFace(f.body)
	if view.JackpotPaid > 0 {
		setRGB(dc, st.Accent)
		drawSharpText(dc, "JACKPOT paid: "+utils.FormatAmount(view.JackpotPaid), st.Padding, y, 0, 0)
	}
	if view.Kind == entities.GameKindDiceSum {
		setRGB(dc, st.Text)
		drawSharpText(dc, jackpotLabel(view), width-st.Padding, y, 1, 0)
	}

	return r.encode(dc, "result", start)
}

func jackpotLabel(view session.ResultView) string {
	if view.JackpotUnknown {
		return "Jackpot: unavailable"
	}
	return "Jackpot: " + utils.FormatAmount(view.Jackpot)
}

func verdict(outcome entities.Outcome) string {
	switch outcome.Kind {
	case entities.GameKindDiceSum:
		text := fmt.Sprintf("%d - %s", outcome.Sum, outcome.Side.Label())
		if outcome.Triple {
			text += " - TRIPLE"
		}
		return text
	default:
		return fmt.Sprintf("%s  %s  %s", outcome.Faces[0].Label(), outcome.Faces[1].Label(), outcome.Faces[2].Label())
	}
}

func (r *Renderer) drawDie(dc *gg.Context, x, y float64, face int) {
	dc.SetRGB(0.96, 0.96, 0.94)
	dc.DrawRoundedRectangle(x, y, dieSize, dieSize, 10)
	dc.Fill()

	if face < 1 || face > 6 {
		return
	}
	cell := float64(dieSize) / 4
	dc.SetRGB(0.1, 0.1, 0.1)
	if face == 1 || face == 4 {
		dc.SetRGB(0.8, 0.1, 0.1)
	}
	for _, p := range pips[face] {
		dc.DrawCircle(x+cell*float64(p[0]+1), y+cell*float64(p[1]+1), 5)
		dc.Fill()
	}
}

func (r *Renderer) drawAnimalDie(dc *gg.Context, f faces, x, y float64, side entities.Side) {
	dc.SetRGB(0.96, 0.96, 0.94)
	dc.DrawRoundedRectangle(x, y, dieSize, dieSize, 10)
	dc.Fill()

	dc.SetFontFace(f.die)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(side.Label(), x+dieSize/2, y+dieSize/2, 0.5, 0.35)
}

func truncate(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
