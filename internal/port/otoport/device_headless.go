//go:build headless

package otoport

import (
	"errors"
	"io"
)

func openDevice(int, io.Reader) (player, error) {
	return nil, errors.New("built without audio device support")
}
