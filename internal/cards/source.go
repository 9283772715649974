package cards

import "context"

// Source supplies the card pool for a match.
type Source interface {
	Cards(ctx context.Context) ([]Card, error)
}

type BuiltinSource struct{}

func (BuiltinSource) Cards(context.Context) ([]Card, error) {
	return Builtin(), nil
}

// FallbackSource returns the primary pool, or the fallback pool when the
// primary fails or is empty.
type FallbackSource struct {
	Primary  Source
	Fallback Source
}

func (s FallbackSource) Cards(ctx context.Context) ([]Card, error) {
	if s.Primary != nil {
		pool, err := s.Primary.Cards(ctx)
		if err == nil && len(pool) > 0 {
			return pool, nil
		}
	}
	if s.Fallback == nil {
		return nil, nil
	}
	return s.Fallback.Cards(ctx)
}
