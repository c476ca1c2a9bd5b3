// Command c64vm boots the C64 core: load ROMs, optionally attach a PRG,
// CRT or D64 image, and run the machine against a video/audio backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/retrostack/c64vm"
	"github.com/retrostack/c64vm/audio"
	"github.com/retrostack/c64vm/debug"
	"github.com/retrostack/c64vm/video"
)

// Version is stamped at build time via -ldflags, following the teacher's
// printFeatures()/Version convention.
var Version = "dev"

func main() {
	var (
		basicROM   = flag.String("basic-rom", "basic.rom", "path to the 8KiB BASIC ROM image")
		kernalROM  = flag.String("kernal-rom", "kernal.rom", "path to the 8KiB KERNAL ROM image")
		charROM    = flag.String("char-rom", "char.rom", "path to the 4KiB character ROM image")
		prgPath    = flag.String("prg", "", "PRG file to inject into RAM at boot")
		crtPath    = flag.String("crt", "", "CRT cartridge image to attach")
		d64Path    = flag.String("d64", "", "D64 disk image to attach for LOAD/SAVE traps")
		scale      = flag.Int("scale", 2, "integer upscale factor for the video window")
		showFeat   = flag.Bool("features", false, "print version and build info, then exit")
		monitorOpt = flag.Bool("monitor", false, "start with the raw-terminal debugger REPL attached")
	)
	flag.Parse()

	if *showFeat {
		printFeatures()
		return
	}

	machine, videoSink, audioSink, err := boot(*basicROM, *kernalROM, *charROM, *scale)
	if err != nil {
		log.Fatalf("c64vm: boot: %v", err)
	}
	defer audioSink.Close()

	if *prgPath != "" {
		data, err := os.ReadFile(*prgPath)
		if err != nil {
			log.Fatalf("c64vm: prg: %v", err)
		}
		if _, err := machine.LoadPRG(data); err != nil {
			log.Fatalf("c64vm: prg: %v", err)
		}
	}
	if *crtPath != "" {
		data, err := os.ReadFile(*crtPath)
		if err != nil {
			log.Fatalf("c64vm: crt: %v", err)
		}
		if err := machine.AttachCartridge(data); err != nil {
			log.Printf("c64vm: cartridge rejected: %v", err)
		}
	}
	if *d64Path != "" {
		data, err := os.ReadFile(*d64Path)
		if err != nil {
			log.Fatalf("c64vm: d64: %v", err)
		}
		machine.AttachDisk(data)
	}

	if *monitorOpt {
		dbg := debug.Attach(machine.CPU)
		mon, err := debug.NewMonitor(machine, dbg, os.Stdin, int(os.Stdin.Fd()))
		if err != nil {
			log.Printf("c64vm: monitor unavailable: %v", err)
		} else {
			defer mon.Close()
			go func() {
				if err := mon.RunREPL(); err != nil {
					log.Printf("c64vm: monitor exited: %v", err)
				}
			}()
		}
	}

	videoSink.SetKeyHandler(func(row, col int, pressed bool) {
		machine.SetKey(row, col, pressed)
	})

	go runFrames(machine)

	if err := videoSink.Run(); err != nil {
		log.Fatalf("c64vm: video: %v", err)
	}
}

func boot(basicPath, kernalPath, charPath string, scale int) (*c64.Machine, *video.EbitenSink, *audio.OtoSink, error) {
	videoSink, err := video.NewEbitenSink(scale, "c64vm")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("video: %w", err)
	}
	audioSink, err := audio.NewOtoSink(44100)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("audio: %w", err)
	}

	machine := c64.NewMachine(videoSink, audioSink)
	loadROM(machine.Bus.LoadBasicROM, basicPath)
	loadROM(machine.Bus.LoadKernalROM, kernalPath)
	loadROM(machine.Bus.LoadCharROM, charPath)
	machine.CPU.Reset()
	return machine, videoSink, audioSink, nil
}

func loadROM(into func([]byte), path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("c64vm: rom %s: %v (zero-filling)", path, err)
		into(nil)
		return
	}
	into(data)
}

// runFrames drives the machine at 60 frames/second until a fatal error
// halts it (spec §7: only UnknownOpcodeError stops the loop).
func runFrames(machine *c64.Machine) {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	for range ticker.C {
		if err := machine.RunFrame(); err != nil {
			log.Fatalf("c64vm: halted: %v", err)
		}
	}
}

func printFeatures() {
	fmt.Printf("c64vm %s\n", Version)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
