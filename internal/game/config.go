package game

import "github.com/sirupsen/logrus"

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation, used for reproducible overworlds.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	// SaveDir is the directory holding save slot files.
	SaveDir string

	// Log receives structured game logs. Nil discards them.
	Log *logrus.Logger
}
