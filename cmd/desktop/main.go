//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
)

const netDash = 12

var (
	background = color.RGBA{A: 255}
	foreground = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	dim        = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Game adapts the scheduler to ebiten's update and draw loop. Each Update
// is one scheduler step.
type Game struct {
	sched *game.Scheduler
	arena game.Arena
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	_, cy := ebiten.CursorPosition()
	g.sched.SetPlayerTarget(game.PaddleTopForPointer(float64(cy)))

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch g.sched.Latest().Match.Phase {
		case game.PhaseIdle:
			g.sched.Submit(game.CommandStart)
		case game.PhaseEnded:
			g.sched.Submit(game.CommandRestart)
		}
	}

	g.sched.Step()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.sched.Latest()
	screen.Fill(background)

	w, h := float32(g.arena.Width), float32(g.arena.Height)
	for y := float32(0); y < h; y += 2 * netDash {
		vector.DrawFilledRect(screen, w/2-1, y, 2, netDash, dim, false)
	}

	for _, p := range []game.Paddle{snap.Player, snap.Auto} {
		vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), foreground, false)
	}
	vector.DrawFilledCircle(screen, float32(snap.Ball.X), float32(snap.Ball.Y), float32(snap.Ball.Radius), foreground, true)

	face := basicfont.Face7x13
	score := fmt.Sprintf("%d : %d", snap.Match.PlayerScore, snap.Match.AIScore)
	bounds := text.BoundString(face, score)
	text.Draw(screen, score, face, int(w/2)-bounds.Dx()/2, 30, foreground)

	if snap.Prompt != "" {
		label := "[ " + snap.Prompt + " ]"
		bounds := text.BoundString(face, label)
		text.Draw(screen, label, face, int(w/2)-bounds.Dx()/2, int(h/2)+40, foreground)
		if winner := snap.Match.Winner(); winner != "" {
			msg := fmt.Sprintf("%s wins", winner)
			bounds := text.BoundString(face, msg)
			text.Draw(screen, msg, face, int(w/2)-bounds.Dx()/2, int(h/2)-40, dim)
		}
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.arena.Width), int(g.arena.Height)
}

func main() {
	cfg := config.Load()
	seed := flag.Int64("seed", time.Now().UnixNano(), "serve randomness seed")
	flag.Parse()

	arena := cfg.Arena()
	if err := arena.Validate(); err != nil {
		log.Fatalf("invalid arena: %v", err)
	}

	sim := game.NewSimulation(arena, game.NewRandomSource(*seed))
	g := &Game{
		sched: game.NewScheduler(sim, nil, cfg.TickRate),
		arena: arena,
	}

	ebiten.SetWindowSize(int(arena.Width), int(arena.Height))
	ebiten.SetWindowTitle("Pong")
	ebiten.SetTPS(cfg.TickRate)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
