package testutils

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// NewRapper inserts a rapper row with generated profile data.
func (env *TestEnv) NewRapper(t *testing.T) *artistdb.Rapper {
	t.Helper()

	name := gofakeit.Name()
	rapper := &artistdb.Rapper{
		ID:   uuid.New(),
		Name: name,
		Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + gofakeit.LetterN(6),
	}
	if _, err := env.DB.GetDB().NewInsert().Model(rapper).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert rapper: %v", err)
	}
	return rapper
}

// NewRanking inserts a ranking and one curated item per rapper, in the order
// given.
func (env *TestEnv) NewRanking(t *testing.T, rappers ...*artistdb.Rapper) *rankingdb.Ranking {
	t.Helper()

	ranking := &rankingdb.Ranking{
		ID:         uuid.New(),
		Title:      gofakeit.BookTitle(),
		IsOfficial: true,
		CreatedBy:  shared.UserID(gofakeit.Username()),
	}
	if _, err := env.DB.GetDB().NewInsert().Model(ranking).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert ranking: %v", err)
	}

	for i, rapper := range rappers {
		item := &rankingdb.RankingItem{
			RankingID: ranking.ID,
			RapperID:  rapper.ID,
			Position:  i + 1,
			Reason:    gofakeit.Sentence(6),
		}
		if _, err := env.DB.GetDB().NewInsert().Model(item).Exec(context.Background()); err != nil {
			t.Fatalf("failed to insert ranking item: %v", err)
		}
	}
	return ranking
}

// NewMember returns a generated user id with the given tier.
func NewMember(tier shared.MemberTier) shared.MemberContext {
	return shared.MemberContext{
		UserID: shared.UserID(gofakeit.Username()),
		Tier:   tier,
	}
}
