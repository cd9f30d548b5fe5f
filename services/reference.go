package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"hotel-pms/apperror"
	"hotel-pms/repository"
)

const (
	grcPrefix            = "GRC"
	banquetPrefix        = "BQT"
	maxReferenceAttempts = 10
)

// referenceGenerator hands out PREFIX-#### numbers. A candidate is checked
// against the store first and the unique index catches the remaining races.
type referenceGenerator struct {
	prefix string
	intn   func(n int) int
	sleep  func(d time.Duration)
}

func newReferenceGenerator(prefix string) *referenceGenerator {
	return &referenceGenerator{prefix: prefix, intn: rand.IntN, sleep: time.Sleep}
}

func (g *referenceGenerator) candidate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.intn(10000))
}

// backoff waits 10 to 50ms.
func (g *referenceGenerator) backoff() {
	g.sleep(time.Duration(10+g.intn(41)) * time.Millisecond)
}

// generate picks a free reference and calls insert with it, retrying on
// collisions. insert returning repository.ErrDuplicate counts as a collision.
func (g *referenceGenerator) generate(
	ctx context.Context,
	exists func(ctx context.Context, ref string) (bool, error),
	insert func(ref string) error,
) (string, error) {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref := g.candidate()
		taken, err := exists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			err := insert(ref)
			if err == nil {
				return ref, nil
			}
			if !errors.Is(err, repository.ErrDuplicate) {
				return "", err
			}
		}
		if attempt < maxReferenceAttempts {
			g.backoff()
		}
	}
	return "", apperror.Conflict("could not allocate a unique %s number, please retry", g.prefix)
}
