package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ReferenceGenerator issues unique, sortable reference codes for ledger
// entries and receipts.
type ReferenceGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// generateULID returns a 26-character, timestamp-ordered ULID.
func (g *ReferenceGenerator) generateULID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
	return id.String()
}

// Generate returns a prefixed reference code.
// Format: PREFIX-{ULID}
// Example: TXN-01ARZ3NDEKTSV4RRFFQ69G5FAV
func (g *ReferenceGenerator) Generate(prefix string) string {
	p := strings.ToUpper(prefix)
	if p == "" {
		p = "REF"
	}
	return fmt.Sprintf("%s-%s", p, g.generateULID())
}

// GenerateTransactionRef returns a ledger entry reference code.
func (g *ReferenceGenerator) GenerateTransactionRef() string {
	return g.Generate("TXN")
}

// GenerateReceiptRef returns a receipt reference code.
func (g *ReferenceGenerator) GenerateReceiptRef() string {
	return g.Generate("RCP")
}

// ValidateReference checks a PREFIX-{ULID} reference code.
func ValidateReference(ref string) bool {
	parts := strings.SplitN(ref, "-", 2)
	if len(parts) != 2 || len(parts[0]) < 2 {
		return false
	}
	if len(parts[1]) != 26 {
		return false
	}
	_, err := ulid.Parse(parts[1])
	return err == nil
}
