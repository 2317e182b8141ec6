// Package main implements the gones NES emulator reference host: an
// ebiten window driving internal/console frame-by-frame.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image/color"
	"sync"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"gones/internal/config"
	"gones/internal/console"
	"gones/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "path to an iNES ROM file")
		configFile = flag.String("config", "", "path to a JSON configuration file")
		regionFlag = flag.String("region", "", "override the cartridge's autodetected region: NTSC or PAL")
		showVer    = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.GetDetailedVersion())
		return
	}

	configPath := *configFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg := config.New()
	if err := cfg.LoadFromFile(configPath); err != nil {
		glog.Fatalf("loading config %s: %v", configPath, err)
	}
	if *regionFlag != "" {
		cfg.Emulation.Region = *regionFlag
	}

	if *romFile == "" {
		glog.Fatalf("no ROM given: pass -rom <path>")
	}

	nes := console.New()
	if err := nes.LoadROMWithOptions(*romFile, cfg.Mapper.FallbackToNROM); err != nil {
		glog.Fatalf("loading ROM %s: %v", *romFile, err)
	}
	switch cfg.Emulation.Region {
	case "NTSC":
		nes.SetRegion(console.NTSC)
	case "PAL":
		nes.SetRegion(console.PAL)
	}

	audioContext := audio.NewContext(cfg.Audio.SampleRate)
	stream := &audioStream{}
	var player *audio.Player
	if cfg.Audio.Enabled {
		var err error
		player, err = audioContext.NewPlayer(stream)
		if err != nil {
			glog.Warningf("audio disabled: creating player: %v", err)
		} else {
			player.SetVolume(float64(cfg.Audio.Volume))
			player.Play()
		}
	}

	game := &Game{
		console: nes,
		stream:  stream,
		input:   cfg.Input,
	}

	w, h := cfg.GetWindowResolution()
	ebiten.SetWindowTitle(fmt.Sprintf("gones - %s", *romFile))
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.Video.VSync)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	if cfg.Video.Filter == "linear" {
		ebiten.SetScreenFilterEnabled(true)
	}

	if err := ebiten.RunGame(game); err != nil {
		glog.Fatalf("game loop exited: %v", err)
	}
}

// audioStream is an io.Reader ebiten's audio.Player pulls raw 16-bit stereo
// PCM from. It fills gaps with silence rather than blocking, since nothing
// guarantees a frame's worth of samples is ready the instant ebiten asks.
type audioStream struct {
	mu  sync.Mutex
	buf []byte
}

func (s *audioStream) push(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range samples {
		v := int16(f * 32767)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		s.buf = append(s.buf, b[0], b[1], b[0], b[1])
	}
	const maxBuffered = 1 << 16
	if len(s.buf) > maxBuffered {
		s.buf = s.buf[len(s.buf)-maxBuffered:]
	}
}

func (s *audioStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// Game implements ebiten.Game, translating keyboard state into controller
// button state each tick and uploading the engine's framebuffer each draw.
type Game struct {
	console *console.Console
	stream  *audioStream
	input   config.InputConfig

	frame [256 * 240]uint32
	image *ebiten.Image
}

func (g *Game) Update() error {
	g.console.SetController(1, pollButtons(g.input.Player1Keys))
	g.console.SetController(2, pollButtons(g.input.Player2Keys))

	g.frame = g.console.RunFrame()
	g.stream.push(g.console.DrainAudio())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.image == nil {
		g.image = ebiten.NewImage(256, 240)
	}

	pix := make([]byte, 256*240*4)
	for i, p := range g.frame {
		pix[i*4+0] = byte(p >> 16)
		pix[i*4+1] = byte(p >> 8)
		pix[i*4+2] = byte(p)
		pix[i*4+3] = 0xFF
	}
	g.image.WritePixels(pix)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scaleX, scaleY := float64(sw)/256, float64(sh)/240
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-256*scale)/2, (float64(sh)-240*scale)/2)
	screen.DrawImage(g.image, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// keyNames maps the config package's string key names to ebiten keys, for
// the small set a NES controller actually needs.
var keyNames = map[string]ebiten.Key{
	"W": ebiten.KeyW, "A": ebiten.KeyA, "S": ebiten.KeyS, "D": ebiten.KeyD,
	"J": ebiten.KeyJ, "K": ebiten.KeyK, "N": ebiten.KeyN, "M": ebiten.KeyM,
	"Up": ebiten.KeyArrowUp, "Down": ebiten.KeyArrowDown,
	"Left": ebiten.KeyArrowLeft, "Right": ebiten.KeyArrowRight,
	"Return": ebiten.KeyEnter, "Space": ebiten.KeySpace,
	"RShift": ebiten.KeyShiftRight, "RCtrl": ebiten.KeyControlRight,
}

func isDown(name string) bool {
	key, ok := keyNames[name]
	if !ok {
		return false
	}
	return ebiten.IsKeyPressed(key)
}

// pollButtons reads the current keyboard state into NES button order: A, B,
// Select, Start, Up, Down, Left, Right.
func pollButtons(keys config.KeyMapping) [8]bool {
	return [8]bool{
		isDown(keys.A),
		isDown(keys.B),
		isDown(keys.Select),
		isDown(keys.Start),
		isDown(keys.Up),
		isDown(keys.Down),
		isDown(keys.Left),
		isDown(keys.Right),
	}
}
