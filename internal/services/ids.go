package services

import "github.com/google/uuid"

// IDGenerator produces the unique identifier a submission is keyed by.
// The id must exist before the first persistence write, so generation is
// pure and never touches the network.
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func NewIDGenerator() IDGenerator {
	return &uuidGenerator{}
}

// Generate implements IDGenerator.
func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}
