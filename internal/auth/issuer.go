package auth

import (
	"context"
	"fmt"
)

// Pair is a freshly issued access/refresh token pair. A Pair is only handed
// out after its refresh value has been committed to the SessionStore.
type Pair struct {
	Access  Token
	Refresh Token
}

type Issuer struct {
	codec    *Codec
	sessions SessionStore
}

func NewIssuer(codec *Codec, sessions SessionStore) *Issuer {
	return &Issuer{codec: codec, sessions: sessions}
}

func (i *Issuer) generate(userID string) (Pair, error) {
	access, err := i.codec.Issue(KindAccess, userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.codec.Issue(KindRefresh, userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssuePair generates a pair and commits its refresh value, replacing any previous one.
func (i *Issuer) IssuePair(ctx context.Context, userID string) (Pair, error) {
	pair, err := i.generate(userID)
	if err != nil {
		return Pair{}, err
	}
	if err := i.sessions.SetRefreshToken(ctx, userID, pair.Refresh.Value); err != nil {
		return Pair{}, fmt.Errorf("commit refresh token: %w", err)
	}
	return pair, nil
}

// RotatePair generates a pair and commits it only if presented is still the
// stored refresh value. A lost race returns ErrSessionSuperseded.
func (i *Issuer) RotatePair(ctx context.Context, userID, presented string) (Pair, error) {
	pair, err := i.generate(userID)
	if err != nil {
		return Pair{}, err
	}
	swapped, err := i.sessions.SwapRefreshToken(ctx, userID, presented, pair.Refresh.Value)
	if err != nil {
		return Pair{}, fmt.Errorf("swap refresh token: %w", err)
	}
	if !swapped {
		return Pair{}, ErrSessionSuperseded
	}
	return pair, nil
}
