// Package idgen generates distributed-safe identifiers for entities that
// need one independent of auto-increment (conversations, messages), plus
// connection/trace ids for the gateway.
package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/sonyflake"
)

// IDGenerator produces a new unique ID.
type IDGenerator interface {
	NextID() (string, error)
}

// SonyflakeGenerator implements IDGenerator using sonyflake: used for
// entity ids (conversations, messages) that benefit from being
// roughly time-sortable.
type SonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

func NewSonyflakeGenerator(machineID uint16) (*SonyflakeGenerator, error) {
	st := sonyflake.Settings{
		StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) { return machineID, nil },
	}
	sf, err := sonyflake.New(st)
	if err != nil {
		return nil, fmt.Errorf("failed to create sonyflake: %w", err)
	}
	return &SonyflakeGenerator{sf: sf}, nil
}

func (g *SonyflakeGenerator) NextID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// UUIDGenerator implements IDGenerator using google/uuid, used for
// connection ids and request trace ids where time-sortability doesn't
// matter and cryptographically strong randomness does.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (g *UUIDGenerator) NextID() (string, error) {
	return uuid.NewString(), nil
}

var (
	defaultGenerator IDGenerator
	once             sync.Once
	initErr          error
)

func SetDefaultGenerator(gen IDGenerator) { defaultGenerator = gen }

// GetDefaultGenerator returns the process-wide generator: the one installed
// by SetDefaultGenerator, or else a SonyflakeGenerator (machine id 1) created
// lazily.
func GetDefaultGenerator() (IDGenerator, error) {
	once.Do(func() {
		if defaultGenerator == nil {
			defaultGenerator, initErr = NewSonyflakeGenerator(1)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return defaultGenerator, nil
}

// NextID generates a new id using the default generator.
func NextID() (string, error) {
	gen, err := GetDefaultGenerator()
	if err != nil {
		return "", err
	}
	return gen.NextID()
}

// NewConnID returns a fresh connection id for the socket gateway.
func NewConnID() string {
	return uuid.NewString()
}
