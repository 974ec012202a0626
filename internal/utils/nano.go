package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	NanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// ticket numbers are read aloud over the phone, so no lookalike characters
	ticketAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// TicketNumber returns a human friendly support ticket reference like TKT-7K3QX9PA.
func TicketNumber() string {
	return "TKT-" + strings.ToUpper(gonanoid.MustGenerate(ticketAlphabet, 8))
}
