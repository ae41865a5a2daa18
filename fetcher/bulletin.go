// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ballotboard/models"
)

// BulletinData is everything the bulletin view needs for one election
type BulletinData struct {
	Election   models.Election
	Positions  []models.PositionVoters
	VoterCodes []models.VoterCode
}

// FetchBulletin loads details, per-candidate voters and voter codes concurrently.
// The first failure cancels the other requests and is returned.
func FetchBulletin(ctx context.Context, src Source, electionID string) (BulletinData, error) {
	var data BulletinData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e, err := src.ElectionDetails(gctx, electionID)
		data.Election = e
		return err
	})
	g.Go(func() error {
		p, err := src.VotesPerCandidate(gctx, electionID)
		data.Positions = p
		return err
	})
	g.Go(func() error {
		c, err := src.VoterCodes(gctx, electionID)
		data.VoterCodes = c
		return err
	})

	if err := g.Wait(); err != nil {
		return BulletinData{}, err
	}
	return data, nil
}
