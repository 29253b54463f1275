// wlshell-demo shows a clock bar along the top of the screen with a
// short-lived menu popup, and can optionally lock the session for a
// while.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"time"

	"deedles.dev/wlshell/shell"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	barHeight = 40
	menuTime  = 3 * time.Second
)

type surface struct {
	common *shell.Common
	draw   func(img *image.RGBA, scale float64)
}

type state struct {
	log      *zap.Logger
	bridge   *shell.Bridge
	lockTime time.Duration

	bar      shell.SurfaceID
	menu     shell.SurfaceID
	surfaces map[shell.SurfaceID]*surface
	outputs  map[shell.OutputID]shell.OutputInfo
}

func (s *state) init() {
	s.surfaces = make(map[shell.SurfaceID]*surface)
	s.outputs = make(map[shell.OutputID]shell.OutputInfo)

	s.bar = s.bridge.CreateLayerSurface(shell.LayerParams{
		Namespace:     "wlshell-demo",
		Layer:         shell.LayerTop,
		Anchor:        shell.AnchorTop | shell.AnchorLeft | shell.AnchorRight,
		Size:          shell.Size{Height: barHeight},
		ExclusiveZone: barHeight,
	})
	s.surfaces[s.bar] = &surface{draw: s.drawBar}
}

func (s *state) run(ctx context.Context) error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.bridge.Done():
			return s.bridge.Wait()
		case notes := <-s.bridge.Notifications():
			for _, note := range notes {
				if s.handle(note) {
					return nil
				}
			}
		case <-tick.C:
			s.present(s.bar)
		}
	}
}

// handle reacts to a single notification. It returns true if the
// program should exit.
func (s *state) handle(note shell.Notification) bool {
	switch note := note.(type) {
	case shell.Created:
		if surf, ok := s.surfaces[note.ID]; ok {
			surf.common = note.Common
		}

	case shell.Configured:
		s.log.Debug("configured", zap.Stringer("surface", note.ID), zap.Any("size", note.Size), zap.Float64("scale", note.Scale))
		s.present(note.ID)
		if note.First && (note.ID == s.bar) {
			s.openMenu()
			if s.lockTime > 0 {
				s.bridge.Lock()
			}
		}

	case shell.ScaleChanged:
		s.present(note.ID)

	case shell.Closed:
		s.bridge.Dropped(note.ID)
		delete(s.surfaces, note.ID)
		switch note.ID {
		case s.bar:
			s.log.Info("bar closed")
			return true
		case s.menu:
			s.menu = shell.NoSurface
		}

	case shell.Failed:
		s.log.Warn("surface failed", zap.Stringer("surface", note.ID), zap.Error(note.Err))
		delete(s.surfaces, note.ID)
		return note.ID == s.bar

	case shell.OutputAdded:
		s.outputs[note.Output.ID] = note.Output
		s.log.Info("output added", zap.String("name", note.Output.Name), zap.Any("mode", note.Output.Mode))

	case shell.OutputUpdated:
		s.outputs[note.Output.ID] = note.Output

	case shell.OutputRemoved:
		delete(s.outputs, note.ID)

	case shell.SessionLocked:
		s.log.Info("session locked", zap.Duration("duration", s.lockTime))
		for id := range s.outputs {
			lock := s.bridge.CreateLockSurface(id)
			s.surfaces[lock] = &surface{draw: s.drawLock}
		}
		time.AfterFunc(s.lockTime, s.bridge.Unlock)

	case shell.SessionUnlocked:
		s.log.Info("session unlocked")
	}

	return false
}

func (s *state) openMenu() {
	s.menu = s.bridge.CreatePopup(shell.PopupParams{
		Parent: s.bar,
		Positioner: shell.PositionerParams{
			Size:                 image.Pt(200, 3*20+8),
			AnchorRect:           image.Rect(0, 0, barHeight, barHeight),
			Anchor:               shell.PositionerAnchorBottomLeft,
			Gravity:              shell.PositionerAnchorBottomRight,
			ConstraintAdjustment: shell.ConstraintAdjustmentSlideX | shell.ConstraintAdjustmentFlipY,
		},
	})
	s.surfaces[s.menu] = &surface{draw: s.drawMenu}

	menu := s.menu
	time.AfterFunc(menuTime, func() { s.bridge.Destroy(menu) })
}

func (s *state) present(id shell.SurfaceID) {
	surf, ok := s.surfaces[id]
	if !ok || (surf.common == nil) {
		return
	}

	size := surf.common.PhysicalSize()
	if (size.X <= 0) || (size.Y <= 0) {
		return
	}

	img := image.NewRGBA(image.Rectangle{Max: size})
	surf.draw(img, surf.common.Scale())
	s.bridge.Present(id, img)
}

func (s *state) drawBar(img *image.RGBA, scale float64) {
	fillRect(img, img.Bounds(), colornames.Darkslategray)

	button := image.Rect(4, 4, barHeight-4, barHeight-4)
	fillRect(img, scaleRect(button, scale), colornames.Steelblue)

	drawText(img, image.Pt(int((barHeight+8)*scale), img.Bounds().Dy()/2+4), colornames.Whitesmoke, time.Now().Format("Mon Jan 2 15:04:05"))
}

func (s *state) drawMenu(img *image.RGBA, scale float64) {
	fillRect(img, img.Bounds(), colornames.Whitesmoke)

	lines := []string{
		fmt.Sprintf("%v outputs", len(s.outputs)),
		fmt.Sprintf("scale %.2f", scale),
		"closing soon",
	}
	for i, line := range lines {
		drawText(img, image.Pt(int(8*scale), int(float64(20*(i+1))*scale)), colornames.Black, line)
	}
}

func (s *state) drawLock(img *image.RGBA, scale float64) {
	fillRect(img, img.Bounds(), colornames.Midnightblue)

	b := img.Bounds()
	drawText(img, image.Pt(b.Dx()/2-40, b.Dy()/2), colornames.Lightgray, "locked")
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(
		int(float64(r.Min.X)*scale),
		int(float64(r.Min.Y)*scale),
		int(float64(r.Max.X)*scale),
		int(float64(r.Max.Y)*scale),
	)
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img draw.Image, dot image.Point, c color.Color, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(text)
}

func main() {
	configPath := flag.String("config", shell.DefaultConfigPath(), "config file")
	lockTime := flag.Duration("lock", 0, "lock the session for this long once the bar is shown")
	activate := flag.Bool("activate", false, "print an activation token and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	config, err := shell.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log, err := config.Log.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	bridge := shell.Dial(ctx, shell.WithConfig(config), shell.WithLogger(log))
	defer bridge.Close()
	if !bridge.Active() {
		log.Fatal("no usable compositor")
	}

	if *activate {
		token, err := bridge.ActivationToken(ctx, "wlshell-demo", shell.NoSurface)
		if err != nil {
			log.Fatal("activation token", zap.Error(err))
		}
		if token == "" {
			log.Fatal("compositor does not support activation")
		}
		fmt.Println(token)
		return
	}

	s := state{
		log:      log,
		bridge:   bridge,
		lockTime: *lockTime,
	}
	s.init()

	err = s.run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("shell stopped", zap.Error(err))
	}
}
