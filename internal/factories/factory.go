package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
)

var fake = faker.New()

// Seed makes every factory deterministic from here on.
func Seed(seed int64) {
	fake = faker.NewWithSeed(rand.NewSource(seed))
}
