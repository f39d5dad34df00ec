package output

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// RenderLinkQR draws link as a compact QR code so the explorer page can be
// opened from a phone. Nothing is written unless w is a terminal.
func RenderLinkQR(w io.Writer, link string) {
	if link == "" || !IsTerminal(w) {
		return
	}
	writeQR(w, link)
}

func writeQR(w io.Writer, data string) {
	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          qr.L,
		Writer:         w,
		QuietZone:      1,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
}
