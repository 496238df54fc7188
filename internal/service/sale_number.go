package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

// SaleNumberSource produces human-facing sale numbers. The store enforces
// uniqueness; a collision surfaces as a generic store failure on insert.
type SaleNumberSource func() string

// saleNumberAlphabet avoids characters that read ambiguously on receipts
const saleNumberAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewSaleNumber generates a sale number of the form SN-20250117-9X4KQZ
func NewSaleNumber() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in far worse trouble
		// than a sale number; fall back to a timestamp suffix
		return fmt.Sprintf("SN-%s-%d", time.Now().Format("20060102"), time.Now().UnixNano()%1000000)
	}

	for i, b := range buf {
		buf[i] = saleNumberAlphabet[int(b)%len(saleNumberAlphabet)]
	}

	return fmt.Sprintf("SN-%s-%s", time.Now().Format("20060102"), buf)
}
