package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wricardo/mcp-training/gridskirmish/game/screen"
)

// keyBindings maps host keys to screen keys. The keypad mirrors the digit row.
var keyBindings = map[ebiten.Key]screen.Key{
	ebiten.KeyDigit1:      screen.KeyOne,
	ebiten.KeyDigit2:      screen.KeyTwo,
	ebiten.KeyDigit3:      screen.KeyThree,
	ebiten.KeyDigit4:      screen.KeyFour,
	ebiten.KeyDigit5:      screen.KeyFive,
	ebiten.KeyDigit6:      screen.KeySix,
	ebiten.KeyDigit7:      screen.KeySeven,
	ebiten.KeyDigit8:      screen.KeyEight,
	ebiten.KeyDigit9:      screen.KeyNine,
	ebiten.KeyNumpad1:     screen.KeyOne,
	ebiten.KeyNumpad2:     screen.KeyTwo,
	ebiten.KeyNumpad3:     screen.KeyThree,
	ebiten.KeyNumpad4:     screen.KeyFour,
	ebiten.KeyNumpad5:     screen.KeyFive,
	ebiten.KeyNumpad6:     screen.KeySix,
	ebiten.KeyNumpad7:     screen.KeySeven,
	ebiten.KeyNumpad8:     screen.KeyEight,
	ebiten.KeyNumpad9:     screen.KeyNine,
	ebiten.KeySpace:       screen.KeySpace,
	ebiten.KeyEnter:       screen.KeyEnter,
	ebiten.KeyNumpadEnter: screen.KeyEnter,
}

// translateKeys converts the host keys pressed this frame, dropping
// duplicates and unbound keys
func translateKeys(pressed []ebiten.Key) []screen.Key {
	var out []screen.Key
	seen := make(map[screen.Key]bool)
	for _, k := range pressed {
		sk, ok := keyBindings[k]
		if !ok || seen[sk] {
			continue
		}
		seen[sk] = true
		out = append(out, sk)
	}
	return out
}

// readInput snapshots this frame's key presses and left click
func readInput() screen.Input {
	frame := screen.Frame{
		Keys: translateKeys(inpututil.AppendJustPressedKeys(nil)),
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		frame.Clicked = true
		frame.X, frame.Y = float64(x), float64(y)
	}
	return frame
}
